package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStorage is an in-memory Storage for handler tests.
type fakeStorage struct {
	stores    map[string]*models.Store
	filters   []models.Filter
	mappings  []models.SynonymMapping
	orders    map[string]*models.OrderHistoryEntry
	stockHist []*models.StockHistoryEntry
	snapshots []*models.GlobalStockSnapshot
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		stores: make(map[string]*models.Store),
		orders: make(map[string]*models.OrderHistoryEntry),
	}
}

func (f *fakeStorage) CreateStore(_ context.Context, store *models.Store) error {
	f.stores[store.ID] = store
	return nil
}

func (f *fakeStorage) GetStore(_ context.Context, id string) (*models.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return nil, errors.NotFoundError("store", id)
	}
	return store, nil
}

func (f *fakeStorage) ListStores(_ context.Context) ([]*models.Store, error) {
	stores := make([]*models.Store, 0, len(f.stores))
	for _, store := range f.stores {
		stores = append(stores, store)
	}
	return stores, nil
}

func (f *fakeStorage) UpdateStore(_ context.Context, store *models.Store) error {
	if _, ok := f.stores[store.ID]; !ok {
		return errors.NotFoundError("store", store.ID)
	}
	f.stores[store.ID] = store
	return nil
}

func (f *fakeStorage) DeleteStore(_ context.Context, id string) error {
	if _, ok := f.stores[id]; !ok {
		return errors.NotFoundError("store", id)
	}
	delete(f.stores, id)
	return nil
}

func (f *fakeStorage) CreateFilter(_ context.Context, filter *models.Filter) error {
	f.filters = append(f.filters, *filter)
	return nil
}

func (f *fakeStorage) ListFilters(_ context.Context) ([]models.Filter, error) {
	return f.filters, nil
}

func (f *fakeStorage) DeleteFilter(_ context.Context, id string) error {
	for i, filter := range f.filters {
		if filter.ID == id {
			f.filters = append(f.filters[:i], f.filters[i+1:]...)
			return nil
		}
	}
	return errors.NotFoundError("filter", id)
}

func (f *fakeStorage) CreateMapping(_ context.Context, mapping *models.SynonymMapping) error {
	for _, existing := range f.mappings {
		if existing.MainProduct == mapping.MainProduct {
			return errors.ValidationError(errors.CodeDuplicate, "main_product", mapping.MainProduct, nil)
		}
	}
	f.mappings = append(f.mappings, *mapping)
	return nil
}

func (f *fakeStorage) ListMappings(_ context.Context) ([]models.SynonymMapping, error) {
	return f.mappings, nil
}

func (f *fakeStorage) UpdateMapping(_ context.Context, mapping *models.SynonymMapping) error {
	for i, existing := range f.mappings {
		if existing.ID == mapping.ID {
			f.mappings[i] = *mapping
			return nil
		}
	}
	return errors.NotFoundError("mapping", mapping.ID)
}

func (f *fakeStorage) DeleteMapping(_ context.Context, id string) error {
	for i, mapping := range f.mappings {
		if mapping.ID == id {
			f.mappings = append(f.mappings[:i], f.mappings[i+1:]...)
			return nil
		}
	}
	return errors.NotFoundError("mapping", id)
}

func (f *fakeStorage) SaveOrder(_ context.Context, entry *models.OrderHistoryEntry) error {
	f.orders[entry.ID] = entry
	return nil
}

func (f *fakeStorage) GetOrder(_ context.Context, id string) (*models.OrderHistoryEntry, error) {
	entry, ok := f.orders[id]
	if !ok {
		return nil, errors.NotFoundError("order", id)
	}
	return entry, nil
}

func (f *fakeStorage) ListOrders(_ context.Context, storeID string, _ int64) ([]*models.OrderHistoryEntry, error) {
	entries := []*models.OrderHistoryEntry{}
	for _, entry := range f.orders {
		if storeID == "" || entry.StoreID == storeID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (f *fakeStorage) SaveStockHistory(_ context.Context, entries []*models.StockHistoryEntry) error {
	f.stockHist = append(f.stockHist, entries...)
	return nil
}

func (f *fakeStorage) ListStockHistory(_ context.Context, storeID string, since time.Time) ([]*models.StockHistoryEntry, error) {
	entries := []*models.StockHistoryEntry{}
	for _, entry := range f.stockHist {
		if entry.StoreID == storeID && entry.RecordedAt.After(since) {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (f *fakeStorage) LatestStocks(_ context.Context, storeName string) (map[string]decimal.Decimal, error) {
	latest := make(map[string]decimal.Decimal)
	for _, entry := range f.stockHist {
		if entry.StoreName == storeName {
			latest[entry.Product] = entry.Stock
		}
	}
	return latest, nil
}

func (f *fakeStorage) SaveSnapshot(_ context.Context, snapshot *models.GlobalStockSnapshot) error {
	f.snapshots = append(f.snapshots, snapshot)
	return nil
}

func (f *fakeStorage) LatestSnapshot(_ context.Context) (*models.GlobalStockSnapshot, error) {
	if len(f.snapshots) == 0 {
		return nil, errors.NotFoundError("snapshot", "latest")
	}
	return f.snapshots[len(f.snapshots)-1], nil
}

func (f *fakeStorage) GetSnapshot(_ context.Context, id string) (*models.GlobalStockSnapshot, error) {
	for _, snapshot := range f.snapshots {
		if snapshot.ID == id {
			return snapshot, nil
		}
	}
	return nil, errors.NotFoundError("snapshot", id)
}

func (f *fakeStorage) ListSnapshots(_ context.Context, _ int64) ([]*models.GlobalStockSnapshot, error) {
	return f.snapshots, nil
}

func newTestServer(store Storage) *gin.Engine {
	return New(DefaultConfig(), store).Router()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedStore(f *fakeStorage, name string, limits ...models.LimitItem) *models.Store {
	store := models.NewStore(name)
	store.Limits = limits
	f.stores[store.ID] = store
	return store
}

func TestHealthCheck(t *testing.T) {
	router := newTestServer(newFakeStorage())

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCreateStore_WithCopyFrom(t *testing.T) {
	fake := newFakeStorage()
	source := seedStore(fake, "Магазин 1", models.LimitItem{Product: "Хлеб", Limit: 30})
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodPost, "/api/v1/stores", gin.H{
		"name":      "Магазин 2",
		"copy_from": source.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	var created models.Store
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(created.Limits) != 1 || created.Limits[0].Product != "Хлеб" {
		t.Errorf("copied limits = %v", created.Limits)
	}
	if created.ID == source.ID {
		t.Error("copy must create a new store")
	}
}

func TestCreateStore_MissingName(t *testing.T) {
	router := newTestServer(newFakeStorage())

	w := doJSON(t, router, http.MethodPost, "/api/v1/stores", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetStore_NotFound(t *testing.T) {
	router := newTestServer(newFakeStorage())

	w := doJSON(t, router, http.MethodGet, "/api/v1/stores/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateLimits_ApplyToAll(t *testing.T) {
	fake := newFakeStorage()
	target := seedStore(fake, "A")
	other := seedStore(fake, "B", models.LimitItem{Product: "Молоко", Limit: 5})
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodPut, "/api/v1/stores/"+target.ID+"/limits", gin.H{
		"limits":       []gin.H{{"product": "Хлеб", "limit": 30}},
		"apply_to_all": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	// The other store keeps its own limits and gains the new one.
	updated := fake.stores[other.ID]
	if len(updated.Limits) != 2 {
		t.Fatalf("other store limits = %v", updated.Limits)
	}
	if updated.Limits[0].Product != "Молоко" || updated.Limits[1].Product != "Хлеб" {
		t.Errorf("merge changed existing order: %v", updated.Limits)
	}
}

func TestRenameLimit(t *testing.T) {
	fake := newFakeStorage()
	store := seedStore(fake, "A",
		models.LimitItem{Product: "Хлеб", Limit: 30},
		models.LimitItem{Product: "Молоко", Limit: 10},
	)
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodPost, "/api/v1/stores/"+store.ID+"/limits/rename", gin.H{
		"old_name": "Хлеб",
		"new_name": "Хлеб белый",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	// Renamed in place, position kept.
	if fake.stores[store.ID].Limits[0].Product != "Хлеб белый" {
		t.Errorf("limits = %v", fake.stores[store.ID].Limits)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/stores/"+store.ID+"/limits/rename", gin.H{
		"old_name": "Нет такого",
		"new_name": "X",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("renaming a missing limit: status = %d, want 400", w.Code)
	}
}

func TestCreateFilter_RejectsBadExpression(t *testing.T) {
	router := newTestServer(newFakeStorage())

	w := doJSON(t, router, http.MethodPost, "/api/v1/filters", gin.H{
		"name":       "broken",
		"expression": "order >> 5",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(errors.CodeExpressionInvalid)) {
		t.Errorf("body = %s", w.Body)
	}
}

func TestCreateFilter_AcceptsRussianAliases(t *testing.T) {
	router := newTestServer(newFakeStorage())

	w := doJSON(t, router, http.MethodPost, "/api/v1/filters", gin.H{
		"name":       "большие заказы",
		"expression": "Заказ > 5",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, body = %s", w.Code, w.Body)
	}
}

func TestCreateMapping_Duplicate(t *testing.T) {
	fake := newFakeStorage()
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodPost, "/api/v1/product-mappings", gin.H{
		"main_product": "Сыр",
		"synonyms":     []string{"Сырок"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("first create: status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/product-mappings", gin.H{
		"main_product": "Сыр",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create: status = %d, want 409", w.Code)
	}
}

func TestProcessText(t *testing.T) {
	fake := newFakeStorage()
	store := seedStore(fake, "Магазин 1", models.LimitItem{Product: "Хлеб", Limit: 30})
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodPost, "/api/v1/stores/"+store.ID+"/process-text", gin.H{
		"text":           "Хлеб белый 25",
		"manual_request": "Торт",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	var resp struct {
		OrderID string                 `json:"order_id"`
		Items   []models.OrderLineItem `json:"items"`
		Count   int                    `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Count != 2 {
		t.Fatalf("count = %d, want computed row + manual row", resp.Count)
	}
	if !resp.Items[0].Order.Equal(decimal.NewFromInt(5)) {
		t.Errorf("order = %s, want 5", resp.Items[0].Order)
	}
	if !resp.Items[1].IsManual {
		t.Errorf("second row should be the manual line: %+v", resp.Items[1])
	}

	// The run is persisted.
	if _, ok := fake.orders[resp.OrderID]; !ok {
		t.Error("order history entry was not saved")
	}
	if len(fake.stockHist) != 1 {
		t.Errorf("stock history entries = %d, want 1", len(fake.stockHist))
	}
}

func TestProcessText_EmptyResult(t *testing.T) {
	fake := newFakeStorage()
	store := seedStore(fake, "Магазин 1", models.LimitItem{Product: "Хлеб", Limit: 30})
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodPost, "/api/v1/stores/"+store.ID+"/process-text", gin.H{
		"text": "Кефир 5",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), string(errors.CodeEmptyResult)) {
		t.Errorf("body = %s", w.Body)
	}
	if len(fake.orders) != 0 {
		t.Error("failed run must not be persisted")
	}
}

func TestDownloadOrder(t *testing.T) {
	fake := newFakeStorage()
	entry := models.NewOrderHistoryEntry("s1", "Магазин 1", []models.OrderLineItem{
		{Product: "Хлеб", Order: decimal.NewFromInt(5)},
	}, "")
	fake.orders[entry.ID] = entry
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodGet, "/api/v1/orders/"+entry.ID+"/download", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "attachment") {
		t.Errorf("Content-Disposition = %q", w.Header().Get("Content-Disposition"))
	}
	body := w.Body.String()
	if !strings.Contains(body, "Магазин 1,Заказ") || !strings.Contains(body, "Хлеб,5") {
		t.Errorf("csv body = %q", body)
	}
}

func uploadCSV(t *testing.T, router *gin.Engine, path, csvBody string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(part, csvBody)
	for key, value := range fields {
		_ = mw.WriteField(key, value)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadGlobalStock_RecordsHistoryWithChange(t *testing.T) {
	fake := newFakeStorage()
	store := seedStore(fake, "Магазин 1", models.LimitItem{Product: "Хлеб", Limit: 30})
	router := newTestServer(fake)

	csv1 := "Товар,Магазин 1,Электро\nХлеб,5,10\n"
	w := uploadCSV(t, router, "/api/v1/global-stock", csv1, map[string]string{"stock_date": "2026-08-28"})
	if w.Code != http.StatusCreated {
		t.Fatalf("first upload: status = %d, body = %s", w.Code, w.Body)
	}

	csv2 := "Товар,Магазин 1,Электро\nХлеб,8,10\n"
	w = uploadCSV(t, router, "/api/v1/global-stock", csv2, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("second upload: status = %d, body = %s", w.Code, w.Body)
	}

	if len(fake.snapshots) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(fake.snapshots))
	}

	// History for the store column only, never the warehouse.
	var entries []*models.StockHistoryEntry
	for _, entry := range fake.stockHist {
		if entry.StoreName != "Магазин 1" {
			t.Errorf("unexpected history for column %q", entry.StoreName)
		}
		if entry.Product == "Хлеб" {
			entries = append(entries, entry)
		}
	}
	if len(entries) != 2 {
		t.Fatalf("Хлеб history entries = %d, want 2", len(entries))
	}
	second := entries[1]
	if !second.PrevStock.Equal(decimal.NewFromInt(5)) || !second.Change.Equal(decimal.NewFromInt(3)) {
		t.Errorf("second entry prev=%s change=%s, want prev=5 change=3", second.PrevStock, second.Change)
	}
	if second.StoreID != store.ID {
		t.Errorf("history store_id = %q, want %q", second.StoreID, store.ID)
	}
}

func TestProcessSnapshot(t *testing.T) {
	fake := newFakeStorage()
	store := seedStore(fake, "Магазин 1",
		models.LimitItem{Product: "Хлеб", Limit: 30},
		models.LimitItem{Product: "Молоко", Limit: 10},
	)
	fake.snapshots = append(fake.snapshots, models.NewGlobalStockSnapshot(
		time.Now(),
		[]string{"Магазин 1", "Электро"},
		map[string]map[string]float64{
			"Хлеб":   {"Магазин 1": 5, "Электро": 10},
			"Молоко": {"Магазин 1": 2, "Электро": 1}, // warehouse exhausted
		},
	))
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodPost, "/api/v1/stores/"+store.ID+"/process-snapshot", gin.H{})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}

	var resp struct {
		Items []models.OrderLineItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Молоко is skipped by the warehouse guard; only Хлеб is ordered.
	if len(resp.Items) != 1 || resp.Items[0].Product != "Хлеб" {
		t.Errorf("items = %v", resp.Items)
	}
	if !resp.Items[0].Order.Equal(decimal.NewFromInt(25)) {
		t.Errorf("order = %s, want 25", resp.Items[0].Order)
	}
}

func TestStockHistoryEndpoint(t *testing.T) {
	fake := newFakeStorage()
	store := seedStore(fake, "Магазин 1")
	entry := models.NewStockHistoryEntry(store.ID, store.Name, "Хлеб", decimal.NewFromInt(5))
	fake.stockHist = append(fake.stockHist, entry)
	router := newTestServer(fake)

	w := doJSON(t, router, http.MethodGet, "/api/v1/stores/"+store.ID+"/stock-history?period=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "Хлеб") {
		t.Errorf("body = %s", w.Body)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/stores/"+store.ID+"/stock-history?period=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad period: status = %d, want 400", w.Code)
	}
}
