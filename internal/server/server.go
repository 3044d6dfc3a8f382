// Package server exposes the planner over HTTP: store and catalog
// management, filter and mapping management, planning runs and the
// global stock endpoints.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// Storage is what the handlers need from the persistence layer.
type Storage interface {
	CreateStore(ctx context.Context, store *models.Store) error
	GetStore(ctx context.Context, id string) (*models.Store, error)
	ListStores(ctx context.Context) ([]*models.Store, error)
	UpdateStore(ctx context.Context, store *models.Store) error
	DeleteStore(ctx context.Context, id string) error

	CreateFilter(ctx context.Context, filter *models.Filter) error
	ListFilters(ctx context.Context) ([]models.Filter, error)
	DeleteFilter(ctx context.Context, id string) error

	CreateMapping(ctx context.Context, mapping *models.SynonymMapping) error
	ListMappings(ctx context.Context) ([]models.SynonymMapping, error)
	UpdateMapping(ctx context.Context, mapping *models.SynonymMapping) error
	DeleteMapping(ctx context.Context, id string) error

	SaveOrder(ctx context.Context, entry *models.OrderHistoryEntry) error
	GetOrder(ctx context.Context, id string) (*models.OrderHistoryEntry, error)
	ListOrders(ctx context.Context, storeID string, limit int64) ([]*models.OrderHistoryEntry, error)

	SaveStockHistory(ctx context.Context, entries []*models.StockHistoryEntry) error
	ListStockHistory(ctx context.Context, storeID string, since time.Time) ([]*models.StockHistoryEntry, error)
	LatestStocks(ctx context.Context, storeName string) (map[string]decimal.Decimal, error)

	SaveSnapshot(ctx context.Context, snapshot *models.GlobalStockSnapshot) error
	LatestSnapshot(ctx context.Context) (*models.GlobalStockSnapshot, error)
	GetSnapshot(ctx context.Context, id string) (*models.GlobalStockSnapshot, error)
	ListSnapshots(ctx context.Context, limit int64) ([]*models.GlobalStockSnapshot, error)
}

// Config holds the HTTP server settings.
type Config struct {
	ListenAddr      string   `json:"listen_addr"`
	Environment     string   `json:"environment"`
	AllowedOrigins  []string `json:"allowed_origins"`
	WarehouseColumn string   `json:"warehouse_column"`
}

// DefaultConfig returns development defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":8080",
		Environment:     "development",
		AllowedOrigins:  []string{"*"},
		WarehouseColumn: "Электро",
	}
}

// Server wires the router to its dependencies.
type Server struct {
	config *Config
	router *gin.Engine
	logger logger.Logger
}

// New builds a server around the given storage.
func New(config *Config, store Storage) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	handler := NewHandler(store, config.WarehouseColumn)
	return &Server{
		config: config,
		router: SetupRouter(config, handler),
		logger: logger.GetGlobalLogger().WithComponent("server"),
	}
}

// Router exposes the configured engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts serving and blocks.
func (s *Server) Run() error {
	s.logger.WithField("addr", s.config.ListenAddr).Info("HTTP server listening")
	return s.router.Run(s.config.ListenAddr)
}
