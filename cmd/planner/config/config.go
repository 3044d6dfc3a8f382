// Package config builds component configurations from CLI inputs.
package config

import (
	"github.com/herobront95-prog/limit-planner/internal/parsers"
	"github.com/herobront95-prog/limit-planner/internal/server"
	"github.com/herobront95-prog/limit-planner/internal/storage"
	"github.com/herobront95-prog/limit-planner/pkg/errors"
)

// CreateStockListConfig returns the stock list parser configuration with
// the header spellings seen in the stores' exports.
func CreateStockListConfig() *parsers.StockListConfig {
	config := parsers.DefaultStockListConfig()
	config.NameAliases = append(config.NameAliases, "Наименование", "item")
	config.QuantityAliases = append(config.QuantityAliases, "Кол-во", "count", "qty")
	return config
}

// CreateLimitsConfig returns the limit catalog parser configuration.
func CreateLimitsConfig() *parsers.LimitsConfig {
	config := parsers.DefaultLimitsConfig()
	config.NameAliases = append(config.NameAliases, "Наименование", "item")
	return config
}

// CreateServerConfig assembles and validates the HTTP server settings.
func CreateServerConfig(listen, environment, warehouseColumn string, origins []string) (*server.Config, error) {
	if listen == "" {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "listen", nil, nil)
	}
	if environment != "development" && environment != "production" {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "environment", environment, nil)
	}

	config := server.DefaultConfig()
	config.ListenAddr = listen
	config.Environment = environment
	if warehouseColumn != "" {
		config.WarehouseColumn = warehouseColumn
	}
	if len(origins) > 0 {
		config.AllowedOrigins = origins
	}
	return config, nil
}

// CreateStorageConfig assembles the MongoDB settings.
func CreateStorageConfig(uri, database string) *storage.Config {
	config := storage.DefaultConfig()
	if uri != "" {
		config.URI = uri
	}
	if database != "" {
		config.Database = database
	}
	return config
}
