package ui

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"

	"policysim/app"
	"policysim/domain/core"
	"policysim/domain/simulation"
	"policysim/internal/errors"

	"github.com/gin-gonic/gin"
)

// SimulatorHandler serves the simulator page
type SimulatorHandler struct {
	simulator *app.SimulatorService
}

func NewSimulatorHandler(simulator *app.SimulatorService) *SimulatorHandler {
	return &SimulatorHandler{simulator: simulator}
}

func (h *SimulatorHandler) HandleView() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.simulator.View())
	}
}

// HandlePatchConfig applies a {field: value} body. Numeric policy
// parameters are clamped to their range here, before reaching the config.
// Either every field applies or none does.
func (h *SimulatorHandler) HandlePatchConfig() gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch map[string]json.RawMessage
		if err := c.ShouldBindJSON(&patch); err != nil {
			respondError(c, errors.InvalidInput("Invalid request body - expected {field: value}"))
			return
		}

		err := h.simulator.Update(func(cfg *simulation.Config) error {
			return applyPatch(cfg, patch)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, h.simulator.View())
	}
}

func (h *SimulatorHandler) HandleReset() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.simulator.Reset()
		c.JSON(http.StatusOK, h.simulator.View())
	}
}

// HandleRun runs the simulation. A failure still answers with the view so
// the previous result stays visible next to the error.
func (h *SimulatorHandler) HandleRun() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := h.simulator.Run(c.Request.Context())
		switch {
		case err == errors.ErrSuperseded:
			respondError(c, err)
		case err != nil:
			c.JSON(errors.HTTPStatus(err), h.simulator.View())
		default:
			c.JSON(http.StatusOK, h.simulator.View())
		}
	}
}

func (h *SimulatorHandler) HandleRuns() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := queryInt(c, "limit", 20)
		if err != nil {
			respondError(c, err)
			return
		}
		runs, err := h.simulator.History(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
	}
}

func (h *SimulatorHandler) HandleRunByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseRunID(c.Param("id"))
		if err != nil {
			respondError(c, errors.InvalidInput(err.Error()))
			return
		}
		run, err := h.simulator.GetRun(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

// applyPatch sets each field of patch on cfg in key order
func applyPatch(cfg *simulation.Config, patch map[string]json.RawMessage) error {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := patch[key]
		var err error
		switch key {
		case "location":
			var loc simulation.Location
			if err = json.Unmarshal(raw, &loc); err == nil {
				cfg.Location = loc
			}
		case "startYear":
			cfg.StartYear, err = decodeYear(raw)
		case "endYear":
			cfg.EndYear, err = decodeYear(raw)
		case "policyName":
			err = json.Unmarshal(raw, &cfg.PolicyName)
		case "description":
			err = json.Unmarshal(raw, &cfg.Description)
		default:
			err = applyPolicyField(cfg, key, raw)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func applyPolicyField(cfg *simulation.Config, field string, raw json.RawMessage) error {
	bound, ok := simulation.BoundOf(field)
	if !ok {
		return fmt.Errorf("unknown field")
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	if n, isNumber := value.(float64); isNumber && bound.Kind == simulation.KindNumber {
		value = simulation.Clamp(field, n)
	}
	return cfg.Set(field, value)
}

func decodeYear(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("expects a year")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expects a whole year, got %v", f)
	}
	return int(f), nil
}
