package ui

import (
	"log"
	"strconv"

	"policysim/internal/errors"

	"github.com/gin-gonic/gin"
)

// respondError writes err as {"error": message, "code": code} with the
// status its code maps to
func respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= 500 {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{
		"error": errors.UserMessage(err),
		"code":  errors.GetCode(err),
	})
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.InvalidInput(name + " must be a positive integer")
	}
	return n, nil
}
