package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/internal/parsers"
)

// UploadGlobalStock ingests a multi-store snapshot CSV. Besides storing
// the snapshot it records one stock history entry per store column and
// product, with the change against the last known level.
func (h *Handler) UploadGlobalStock(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		h.badRequest(c, "file upload is required")
		return
	}
	defer file.Close()

	upload, stats, err := parsers.ParseGlobalStock(file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if stats.HasErrors() {
		h.logger.WithField("stats", stats.String()).Warn("global stock parsed with errors")
	}

	stockDate := time.Now().UTC()
	if raw := c.PostForm("stock_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.badRequest(c, "stock_date must be YYYY-MM-DD")
			return
		}
		stockDate = parsed
	}

	snapshot := models.NewGlobalStockSnapshot(stockDate, upload.StoreColumns, upload.Data)
	if err := h.store.SaveSnapshot(c.Request.Context(), snapshot); err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.recordSnapshotHistory(c, snapshot); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            snapshot.ID,
		"stock_date":    snapshot.StockDate,
		"store_columns": snapshot.StoreColumns,
		"products":      len(snapshot.Data),
	})
}

// recordSnapshotHistory writes stock history for every snapshot column
// that names a known store. The warehouse column is a shipping buffer,
// not a store, and unknown columns have no store to attach history to.
func (h *Handler) recordSnapshotHistory(c *gin.Context, snapshot *models.GlobalStockSnapshot) error {
	ctx := c.Request.Context()

	stores, err := h.store.ListStores(ctx)
	if err != nil {
		return err
	}
	storeIDs := make(map[string]string, len(stores))
	for _, store := range stores {
		storeIDs[store.Name] = store.ID
	}

	for _, column := range snapshot.StoreColumns {
		if column == h.warehouseColumn {
			continue
		}
		storeID, known := storeIDs[column]
		if !known {
			h.logger.WithField("column", column).Debug("snapshot column has no matching store")
			continue
		}

		previous, err := h.store.LatestStocks(ctx, column)
		if err != nil {
			return err
		}

		entries := make([]*models.StockHistoryEntry, 0, len(snapshot.Data))
		for product, columns := range snapshot.Data {
			stock := decimal.NewFromFloat(columns[column])

			entry := models.NewStockHistoryEntry(storeID, column, product, stock)
			if prev, ok := previous[product]; ok {
				entry.PrevStock = prev
				entry.Change = stock.Sub(prev)
			}
			entries = append(entries, entry)
		}

		if err := h.store.SaveStockHistory(ctx, entries); err != nil {
			return err
		}
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot in full.
func (h *Handler) LatestSnapshot(c *gin.Context) {
	snapshot, err := h.store.LatestSnapshot(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetSnapshot returns one snapshot by ID.
func (h *Handler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.store.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ListSnapshots returns snapshot metadata, newest first.
func (h *Handler) ListSnapshots(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	snapshots, err := h.store.ListSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// StockHistory returns a store's observed stock levels for the last
// period days (default 30).
func (h *Handler) StockHistory(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("period", "30"))
	if err != nil || days <= 0 {
		h.badRequest(c, "period must be a positive number of days")
		return
	}

	store, err := h.store.GetStore(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	entries, err := h.store.ListStockHistory(c.Request.Context(), store.ID, since)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"store_id":   store.ID,
		"store_name": store.Name,
		"period":     days,
		"entries":    entries,
	})
}
