package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/internal/parsers"
	"github.com/herobront95-prog/limit-planner/internal/planner"
)

type processTextRequest struct {
	Text          string `json:"text" binding:"required"`
	ManualRequest string `json:"manual_request"`
}

// ProcessText plans an order from pasted stock count lines.
func (h *Handler) ProcessText(c *gin.Context) {
	var req processTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "text is required")
		return
	}

	items := parsers.ParseStockText(req.Text)
	h.runPlanning(c, c.Param("id"), items, req.ManualRequest)
}

// ProcessFile plans an order from an uploaded stock count CSV.
func (h *Handler) ProcessFile(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.badRequest(c, "file upload is required")
		return
	}
	defer file.Close()

	items, stats, err := parsers.NewStockParser(nil).ParseStockList(file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if stats.HasErrors() {
		h.logger.WithField("stats", stats.String()).Warn("stock list parsed with errors")
	}

	h.runPlanning(c, c.Param("id"), items, c.PostForm("manual_request"))
}

type processSnapshotRequest struct {
	ManualRequest string `json:"manual_request"`
	// WarehouseColumn overrides the configured warehouse column for the
	// availability guard. Empty keeps the configured default.
	WarehouseColumn string `json:"warehouse_column"`
}

// ProcessSnapshot plans an order using the store's column of the latest
// global stock snapshot. Products with nothing left in the warehouse
// beyond the reserve are skipped.
func (h *Handler) ProcessSnapshot(c *gin.Context) {
	var req processSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.badRequest(c, "invalid request body")
		return
	}

	store, err := h.store.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	snapshot, err := h.store.LatestSnapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	warehouse := req.WarehouseColumn
	if warehouse == "" {
		warehouse = h.warehouseColumn
	}

	items := planner.SnapshotItems(snapshot, store.Name, warehouse, planner.DefaultWarehouseReserve)
	h.runPlanning(c, store.ID, items, req.ManualRequest)
}

// runPlanning loads the store's planning inputs, runs the pipeline and
// persists the outcome.
func (h *Handler) runPlanning(c *gin.Context, storeID string, items []models.StockLineItem, manualRequest string) {
	ctx := c.Request.Context()

	store, err := h.store.GetStore(ctx, storeID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	mappings, err := h.store.ListMappings(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	filters, err := h.store.ListFilters(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.planner.Plan(planner.Request{
		StoreID:       store.ID,
		StoreName:     store.Name,
		Items:         items,
		Catalog:       store.Catalog(),
		Mappings:      mappings,
		Filters:       filters,
		ManualRequest: manualRequest,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.SaveStockHistory(ctx, result.History); err != nil {
		h.respondError(c, err)
		return
	}

	entry := models.NewOrderHistoryEntry(store.ID, store.Name, result.Items, manualRequest)
	if err := h.store.SaveOrder(ctx, entry); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":   entry.ID,
		"store_id":   store.ID,
		"store_name": store.Name,
		"items":      result.Items,
		"count":      result.Count,
	})
}

// ListOrders returns planning runs, optionally scoped to one store.
func (h *Handler) ListOrders(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)

	entries, err := h.store.ListOrders(c.Request.Context(), c.Query("store_id"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetOrder returns one planning run.
func (h *Handler) GetOrder(c *gin.Context) {
	entry, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DownloadOrder returns one planning run as the two-column CSV the
// buyers forward to suppliers.
func (h *Handler) DownloadOrder(c *gin.Context) {
	entry, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := parsers.WriteOrderCSV(&buf, entry.StoreName, entry.Items); err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="order_`+entry.ID+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
