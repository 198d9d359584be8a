package ui

import (
	"net/http"

	"policysim/app"

	"github.com/gin-gonic/gin"
)

// PolicyHandler serves the policy detail page
type PolicyHandler struct {
	policies *app.PolicyService
}

func NewPolicyHandler(policies *app.PolicyService) *PolicyHandler {
	return &PolicyHandler{policies: policies}
}

func (h *PolicyHandler) HandleDetail() gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := h.policies.Detail(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
