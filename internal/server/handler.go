package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herobront95-prog/limit-planner/internal/planner"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store           Storage
	planner         *planner.Service
	warehouseColumn string
	logger          logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(store Storage, warehouseColumn string) *Handler {
	return &Handler{
		store:           store,
		planner:         planner.NewService(),
		warehouseColumn: warehouseColumn,
		logger:          logger.GetGlobalLogger().WithComponent("http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "limit-planner",
	})
}

// respondError maps application errors onto HTTP responses.
func (h *Handler) respondError(c *gin.Context, err error) {
	if pe, ok := errors.AsPlannerError(err); ok {
		status := pe.HTTPStatus()
		if status >= http.StatusInternalServerError {
			h.logger.WithError(err).Error("request failed")
		}
		c.JSON(status, gin.H{
			"error": pe.Message,
			"code":  pe.Code,
		})
		return
	}

	h.logger.WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "internal error",
		"code":  errors.CodeUnexpectedError,
	})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  errors.CodeInvalidValue,
	})
}
