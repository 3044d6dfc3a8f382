package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/herobront95-prog/limit-planner/internal/models"
)

type createStoreRequest struct {
	Name     string `json:"name" binding:"required"`
	CopyFrom string `json:"copy_from"`
}

// CreateStore creates a store, optionally copying another store's limit
// catalog as the starting point.
func (h *Handler) CreateStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "store name is required")
		return
	}

	store := models.NewStore(strings.TrimSpace(req.Name))
	if store.Name == "" {
		h.badRequest(c, "store name is required")
		return
	}

	if req.CopyFrom != "" {
		source, err := h.store.GetStore(c.Request.Context(), req.CopyFrom)
		if err != nil {
			h.respondError(c, err)
			return
		}
		store.Limits = append([]models.LimitItem{}, source.Limits...)
	}

	if err := h.store.CreateStore(c.Request.Context(), store); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

// ListStores returns every store.
func (h *Handler) ListStores(c *gin.Context) {
	stores, err := h.store.ListStores(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

// GetStore returns one store with its catalog.
func (h *Handler) GetStore(c *gin.Context) {
	store, err := h.store.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

type updateStoreRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateStore renames a store.
func (h *Handler) UpdateStore(c *gin.Context) {
	var req updateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "store name is required")
		return
	}

	store, err := h.store.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	store.Name = strings.TrimSpace(req.Name)
	if err := h.store.UpdateStore(c.Request.Context(), store); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

// DeleteStore removes a store.
func (h *Handler) DeleteStore(c *gin.Context) {
	if err := h.store.DeleteStore(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateLimitsRequest struct {
	Limits []models.LimitItem `json:"limits" binding:"required"`
	// ApplyToAll merges the same limits into every other store as well.
	ApplyToAll bool `json:"apply_to_all"`
}

// UpdateLimits replaces a store's limit catalog. The submitted order is
// kept: it is the catalog's insertion order and drives matching
// tie-breaks.
func (h *Handler) UpdateLimits(c *gin.Context) {
	var req updateLimitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "limits payload is invalid")
		return
	}
	for _, item := range req.Limits {
		if err := item.Validate(); err != nil {
			h.badRequest(c, err.Error())
			return
		}
	}

	store, err := h.store.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	store.Limits = req.Limits
	if err := h.store.UpdateStore(c.Request.Context(), store); err != nil {
		h.respondError(c, err)
		return
	}

	if req.ApplyToAll {
		if err := h.mergeLimitsIntoOtherStores(c, store.ID, req.Limits); err != nil {
			h.respondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, store)
}

// mergeLimitsIntoOtherStores adds or updates the given limits in every
// other store without discarding their existing entries.
func (h *Handler) mergeLimitsIntoOtherStores(c *gin.Context, originID string, limits []models.LimitItem) error {
	stores, err := h.store.ListStores(c.Request.Context())
	if err != nil {
		return err
	}

	for _, other := range stores {
		if other.ID == originID {
			continue
		}

		catalog := other.Catalog()
		for _, item := range limits {
			catalog.Set(item.Product, item.Limit)
		}

		merged := make([]models.LimitItem, 0, catalog.Len())
		for _, key := range catalog.Keys() {
			limit, _ := catalog.Get(key)
			merged = append(merged, models.LimitItem{Product: key, Limit: limit})
		}
		other.Limits = merged

		if err := h.store.UpdateStore(c.Request.Context(), other); err != nil {
			return err
		}
	}
	return nil
}

type renameLimitRequest struct {
	OldName string `json:"old_name" binding:"required"`
	NewName string `json:"new_name" binding:"required"`
}

// RenameLimit renames one catalog entry in place, keeping its position.
func (h *Handler) RenameLimit(c *gin.Context) {
	var req renameLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "old_name and new_name are required")
		return
	}

	newName := strings.TrimSpace(req.NewName)
	if newName == "" {
		h.badRequest(c, "new_name cannot be empty")
		return
	}

	store, err := h.store.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	renamed := false
	for i := range store.Limits {
		if store.Limits[i].Product == req.OldName {
			store.Limits[i].Product = newName
			renamed = true
			break
		}
	}
	if !renamed {
		h.badRequest(c, "limit "+req.OldName+" not found in store")
		return
	}

	if err := h.store.UpdateStore(c.Request.Context(), store); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}
