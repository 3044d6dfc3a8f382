// Package models defines the data types shared across the order planning
// pipeline: the per-store limit catalog, stock line items, synonym mappings,
// saved filters, and the history records the service persists.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LimitCatalog maps product names to non-negative purchase limits for one
// store. It preserves insertion order: matcher tie-breaks are
// first-encountered-wins, so the order keys were added in is part of the
// matching contract and must survive round-trips through the catalog.
type LimitCatalog struct {
	keys   []string
	limits map[string]int
}

// NewLimitCatalog creates an empty catalog.
func NewLimitCatalog() *LimitCatalog {
	return &LimitCatalog{
		limits: make(map[string]int),
	}
}

// NewLimitCatalogFromItems builds a catalog from limit items in slice order.
func NewLimitCatalogFromItems(items []LimitItem) *LimitCatalog {
	c := NewLimitCatalog()
	for _, item := range items {
		c.Set(item.Product, item.Limit)
	}
	return c
}

// Set adds or updates a limit. A negative limit is clamped to zero, which
// matching treats as "no limit configured". Updating an existing key keeps
// its original position.
func (c *LimitCatalog) Set(product string, limit int) {
	if limit < 0 {
		limit = 0
	}
	if _, exists := c.limits[product]; !exists {
		c.keys = append(c.keys, product)
	}
	c.limits[product] = limit
}

// Get returns the limit for an exact catalog key.
func (c *LimitCatalog) Get(product string) (int, bool) {
	limit, ok := c.limits[product]
	return limit, ok
}

// Keys returns the catalog keys in insertion order. The returned slice is
// shared; callers must not modify it.
func (c *LimitCatalog) Keys() []string {
	return c.keys
}

// Len returns the number of catalog entries.
func (c *LimitCatalog) Len() int {
	return len(c.keys)
}

// LimitItem is one configured product limit inside a store.
type LimitItem struct {
	Product string `json:"product" bson:"product"`
	Limit   int    `json:"limit" bson:"limit"`
}

// Validate checks a limit item before it is stored.
func (li *LimitItem) Validate() error {
	if strings.TrimSpace(li.Product) == "" {
		return fmt.Errorf("limit product name cannot be empty")
	}
	if li.Limit < 0 {
		return fmt.Errorf("limit for %q cannot be negative", li.Product)
	}
	return nil
}

// Store is a retail point with its own limit catalog.
type Store struct {
	ID        string      `json:"id" bson:"id"`
	Name      string      `json:"name" bson:"name"`
	Limits    []LimitItem `json:"limits" bson:"limits"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// NewStore creates a store with a fresh ID and empty catalog.
func NewStore(name string) *Store {
	return &Store{
		ID:        uuid.NewString(),
		Name:      name,
		Limits:    []LimitItem{},
		CreatedAt: time.Now().UTC(),
	}
}

// Catalog builds the ordered limit catalog from the store's limit items.
func (s *Store) Catalog() *LimitCatalog {
	return NewLimitCatalogFromItems(s.Limits)
}

// StockLineItem is one inbound stock-count row: a free-text product name
// and the counted quantity.
type StockLineItem struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CoerceQuantity parses a quantity string, returning zero for anything that
// is not a number. Malformed counts never reject a row.
func CoerceQuantity(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	// Counts pasted from spreadsheets sometimes carry a decimal comma.
	raw = strings.ReplaceAll(raw, ",", ".")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SynonymMapping declares that a set of alternate spellings all denote the
// main product and must be merged before matching.
type SynonymMapping struct {
	ID          string    `json:"id" bson:"id"`
	MainProduct string    `json:"main_product" bson:"main_product"`
	Synonyms    []string  `json:"synonyms" bson:"synonyms"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// NewSynonymMapping creates a mapping with a fresh ID.
func NewSynonymMapping(mainProduct string, synonyms []string) *SynonymMapping {
	if synonyms == nil {
		synonyms = []string{}
	}
	return &SynonymMapping{
		ID:          uuid.NewString(),
		MainProduct: mainProduct,
		Synonyms:    synonyms,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks a mapping before it is stored.
func (m *SynonymMapping) Validate() error {
	if strings.TrimSpace(m.MainProduct) == "" {
		return fmt.Errorf("main product cannot be empty")
	}
	return nil
}

// Filter is a saved filter expression applied to computed order rows.
type Filter struct {
	ID         string    `json:"id" bson:"id"`
	Name       string    `json:"name" bson:"name"`
	Expression string    `json:"expression" bson:"expression"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NewFilter creates a filter with a fresh ID.
func NewFilter(name, expression string) *Filter {
	return &Filter{
		ID:         uuid.NewString(),
		Name:       name,
		Expression: expression,
		CreatedAt:  time.Now().UTC(),
	}
}

// OrderLineItem is one row of a computed replenishment order.
type OrderLineItem struct {
	Product  string          `json:"product" bson:"product"`
	Stock    decimal.Decimal `json:"stock" bson:"stock"`
	Limit    int             `json:"limit" bson:"limit"`
	Order    decimal.Decimal `json:"order" bson:"order"`
	IsManual bool            `json:"is_manual" bson:"is_manual"`
}

// OrderQuantity computes how much to order: max(0, limit - stock).
func OrderQuantity(limit int, stock decimal.Decimal) decimal.Decimal {
	order := decimal.NewFromInt(int64(limit)).Sub(stock)
	if order.IsNegative() {
		return decimal.Zero
	}
	return order
}

// OrderHistoryEntry is a persisted planning run for one store.
type OrderHistoryEntry struct {
	ID            string          `json:"id" bson:"id"`
	StoreID       string          `json:"store_id" bson:"store_id"`
	StoreName     string          `json:"store_name" bson:"store_name"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	Items         []OrderLineItem `json:"items" bson:"items"`
	ManualRequest string          `json:"manual_request,omitempty" bson:"manual_request,omitempty"`
}

// NewOrderHistoryEntry creates a history entry for a completed run.
func NewOrderHistoryEntry(storeID, storeName string, items []OrderLineItem, manualRequest string) *OrderHistoryEntry {
	return &OrderHistoryEntry{
		ID:            uuid.NewString(),
		StoreID:       storeID,
		StoreName:     storeName,
		CreatedAt:     time.Now().UTC(),
		Items:         items,
		ManualRequest: manualRequest,
	}
}

// StockHistoryEntry records one observed stock level for a store/product
// pair. PrevStock and Change are filled when the entry comes from a global
// snapshot upload and the previous level is known.
type StockHistoryEntry struct {
	ID         string          `json:"id" bson:"id"`
	StoreID    string          `json:"store_id" bson:"store_id"`
	StoreName  string          `json:"store_name" bson:"store_name"`
	Product    string          `json:"product" bson:"product"`
	Stock      decimal.Decimal `json:"stock" bson:"stock"`
	PrevStock  decimal.Decimal `json:"prev_stock" bson:"prev_stock"`
	Change     decimal.Decimal `json:"change" bson:"change"`
	RecordedAt time.Time       `json:"recorded_at" bson:"recorded_at"`
}

// NewStockHistoryEntry records a stock observation taken now.
func NewStockHistoryEntry(storeID, storeName, product string, stock decimal.Decimal) *StockHistoryEntry {
	return &StockHistoryEntry{
		ID:         uuid.NewString(),
		StoreID:    storeID,
		StoreName:  storeName,
		Product:    product,
		Stock:      stock,
		RecordedAt: time.Now().UTC(),
	}
}

// GlobalStockSnapshot is a shared multi-store stock upload: for every
// product, the counted quantity in each store column.
type GlobalStockSnapshot struct {
	ID           string                        `json:"id" bson:"id"`
	UploadedAt   time.Time                     `json:"uploaded_at" bson:"uploaded_at"`
	StockDate    time.Time                     `json:"stock_date" bson:"stock_date"`
	StoreColumns []string                      `json:"store_columns" bson:"store_columns"`
	Data         map[string]map[string]float64 `json:"data" bson:"data"`
}

// NewGlobalStockSnapshot creates a snapshot record for an upload.
func NewGlobalStockSnapshot(stockDate time.Time, storeColumns []string, data map[string]map[string]float64) *GlobalStockSnapshot {
	return &GlobalStockSnapshot{
		ID:           uuid.NewString(),
		UploadedAt:   time.Now().UTC(),
		StockDate:    stockDate,
		StoreColumns: storeColumns,
		Data:         data,
	}
}
