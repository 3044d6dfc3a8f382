// Package storage persists the planner's entities in MongoDB: stores
// with their limit catalogs, saved filters, synonym mappings, global
// stock snapshots and the order and stock history.
package storage

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/herobront95-prog/limit-planner/pkg/errors"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// Collection names.
const (
	collStores       = "stores"
	collFilters      = "filters"
	collMappings     = "product_mappings"
	collGlobalStock  = "global_stock"
	collStockHistory = "stock_history"
	collOrderHistory = "order_history"
)

// Config holds the database connection settings.
type Config struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// DefaultConfig returns settings for a local development database.
func DefaultConfig() *Config {
	return &Config{
		URI:      "mongodb://localhost:27017",
		Database: "limit_planner",
	}
}

// Validate checks the connection settings.
func (c *Config) Validate() error {
	if c.URI == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "mongo.uri", nil, nil)
	}
	if c.Database == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "mongo.database", nil, nil)
	}
	return nil
}

// Mongo is the MongoDB-backed store.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger logger.Logger
}

// Connect opens a client, verifies the connection and returns the store.
func Connect(ctx context.Context, config *Config) (*Mongo, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("storage")

	opts := options.Client().
		ApplyURI(config.URI).
		SetRegistry(newRegistry())

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.StorageError(errors.CodeConnectionFailed, "connect", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.StorageError(errors.CodeConnectionFailed, "ping", err)
	}

	log.WithField("database", config.Database).Info("connected to MongoDB")

	return &Mongo{
		client: client,
		db:     client.Database(config.Database),
		logger: log,
	}, nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the query paths rely on. Safe to run
// on every startup.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		collStores: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		},
		collFilters: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		},
		collMappings: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "main_product", Value: 1}}, Options: unique},
		},
		collGlobalStock: {
			{Keys: bson.D{{Key: "uploaded_at", Value: -1}}},
		},
		collStockHistory: {
			{Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "product", Value: 1}, {Key: "recorded_at", Value: -1}}},
		},
		collOrderHistory: {
			{Keys: bson.D{{Key: "store_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		},
	}

	for coll, models := range indexes {
		if _, err := m.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.StorageError(errors.CodeWriteFailed, "create indexes on "+coll, err)
		}
	}

	m.logger.Debug("indexes ensured")
	return nil
}
