package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/herobront95-prog/limit-planner/internal/filterexpr"
	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

type filterRequest struct {
	Name       string `json:"name" binding:"required"`
	Expression string `json:"expression" binding:"required"`
}

// CreateFilter saves a filter. The expression is compiled up front so a
// typo fails here, loudly, instead of silently skipping rows during
// planning.
func (h *Handler) CreateFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "name and expression are required")
		return
	}

	if _, err := filterexpr.Compile(req.Expression); err != nil {
		h.respondError(c, errors.ExpressionError(req.Expression, err))
		return
	}

	filter := models.NewFilter(strings.TrimSpace(req.Name), req.Expression)
	if err := h.store.CreateFilter(c.Request.Context(), filter); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, filter)
}

// ListFilters returns every saved filter in application order.
func (h *Handler) ListFilters(c *gin.Context) {
	filters, err := h.store.ListFilters(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, filters)
}

// DeleteFilter removes a saved filter.
func (h *Handler) DeleteFilter(c *gin.Context) {
	if err := h.store.DeleteFilter(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type mappingRequest struct {
	MainProduct string   `json:"main_product" binding:"required"`
	Synonyms    []string `json:"synonyms"`
}

// CreateMapping saves a synonym mapping.
func (h *Handler) CreateMapping(c *gin.Context) {
	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "main_product is required")
		return
	}

	mapping := models.NewSynonymMapping(strings.TrimSpace(req.MainProduct), req.Synonyms)
	if err := mapping.Validate(); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	if err := h.store.CreateMapping(c.Request.Context(), mapping); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

// ListMappings returns every synonym mapping.
func (h *Handler) ListMappings(c *gin.Context) {
	mappings, err := h.store.ListMappings(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mappings)
}

// UpdateMapping replaces a mapping's main product and synonyms.
func (h *Handler) UpdateMapping(c *gin.Context) {
	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "main_product is required")
		return
	}

	mappings, err := h.store.ListMappings(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	id := c.Param("id")
	var existing *models.SynonymMapping
	for i := range mappings {
		if mappings[i].ID == id {
			existing = &mappings[i]
			break
		}
	}
	if existing == nil {
		h.respondError(c, errors.NotFoundError("mapping", id))
		return
	}

	existing.MainProduct = strings.TrimSpace(req.MainProduct)
	existing.Synonyms = req.Synonyms
	if existing.Synonyms == nil {
		existing.Synonyms = []string{}
	}
	if err := existing.Validate(); err != nil {
		h.badRequest(c, err.Error())
		return
	}

	if err := h.store.UpdateMapping(c.Request.Context(), existing); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

// DeleteMapping removes a synonym mapping.
func (h *Handler) DeleteMapping(c *gin.Context) {
	if err := h.store.DeleteMapping(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
