package ui

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"policysim/adapters/excel"
	"policysim/app"
	"policysim/domain/catalog"
	"policysim/internal/errors"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the policy catalog page
type CatalogHandler struct {
	catalog  *app.CatalogService
	exporter *excel.CatalogExporter
}

func NewCatalogHandler(catalog *app.CatalogService, exporter *excel.CatalogExporter) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, exporter: exporter}
}

func (h *CatalogHandler) HandleView() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.catalog.View())
	}
}

// HandleRefresh refetches the collection. Facet query parameters narrow
// the fetch on the server and become the selection. A refresh overtaken by
// a newer one still answers with the current view.
func (h *CatalogHandler) HandleRefresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		var err error
		if sel := catalog.SelectionFromQuery(c.Request.URL.Query()); sel.ActiveCount() > 0 {
			err = h.catalog.RefreshNarrowed(c.Request.Context(), sel)
		} else {
			err = h.catalog.Refresh(c.Request.Context())
		}
		if err != nil && err != errors.ErrSuperseded {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.catalog.View())
	}
}

func (h *CatalogHandler) HandleSetFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		facet, err := catalog.ParseFacet(c.Param("facet"))
		if err != nil {
			respondError(c, errors.InvalidInput(err.Error()))
			return
		}

		var body struct {
			Value string `json:"value"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			log.Printf("[API] invalid filter body: %v", err)
			respondError(c, errors.InvalidInput("Invalid request body - value required"))
			return
		}

		h.catalog.SetFilter(facet, body.Value)
		c.JSON(http.StatusOK, h.catalog.View())
	}
}

// HandleReplaceFilters sets every facet at once from a {facet: value} body.
// Facets left out are cleared.
func (h *CatalogHandler) HandleReplaceFilters() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, errors.InvalidInput("Invalid request body - expected {facet: value}"))
			return
		}

		sel := catalog.Selection{}
		for name, value := range body {
			facet, err := catalog.ParseFacet(name)
			if err != nil {
				respondError(c, errors.InvalidInput(err.Error()))
				return
			}
			sel.Set(facet, value)
		}

		h.catalog.ApplySelection(sel)
		c.JSON(http.StatusOK, h.catalog.View())
	}
}

func (h *CatalogHandler) HandleClearFilters() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.catalog.ClearFilters()
		c.JSON(http.StatusOK, h.catalog.View())
	}
}

// HandleLoadMore reveals the next page. At the tail it is a no-op that
// reports has_more false.
func (h *CatalogHandler) HandleLoadMore() gin.HandlerFunc {
	return func(c *gin.Context) {
		appended, hasMore, _ := h.catalog.LoadMore()
		view := h.catalog.View()
		c.JSON(http.StatusOK, gin.H{
			"appended": appended,
			"has_more": hasMore,
			"shown":    view.Shown,
			"total":    view.Total,
			"summary":  view.Summary,
		})
	}
}

// HandleExport downloads the whole filtered collection, not just the
// visible page
func (h *CatalogHandler) HandleExport() gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := excel.ParseFormat(c.Query("format"))
		if err != nil {
			respondError(c, err)
			return
		}

		policies := h.catalog.Filtered()
		filename := fmt.Sprintf("policies-%s.%s", time.Now().UTC().Format("20060102"), format)
		c.Header("Content-Type", format.ContentType())
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Status(http.StatusOK)

		if err := h.exporter.Write(c.Writer, format, policies); err != nil {
			log.Printf("[API] export of %d policies failed: %v", len(policies), err)
			c.Status(http.StatusInternalServerError)
			return
		}
		log.Printf("[API] exported %d policies as %s", len(policies), format)
	}
}
