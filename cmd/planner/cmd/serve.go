package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/herobront95-prog/limit-planner/cmd/planner/config"
	"github.com/herobront95-prog/limit-planner/internal/server"
	"github.com/herobront95-prog/limit-planner/internal/storage"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

var (
	listenAddr      string
	mongoURI        string
	mongoDatabase   string
	allowedOrigins  []string
	warehouseColumn string
	environment     string
)

// serveCmd runs the HTTP API backed by MongoDB.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the planning HTTP API",
	Long: `Serve starts the HTTP API: store and catalog management, saved filters,
synonym mappings, planning runs and global stock snapshots. State lives in
MongoDB.`,
	Example: `  planner serve --listen :8080 --mongo-uri mongodb://localhost:27017
  PLANNER_MONGO_URI=mongodb://db:27017 planner serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8080", "listen address")
	serveCmd.Flags().StringVar(&mongoURI, "mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	serveCmd.Flags().StringVar(&mongoDatabase, "mongo-db", "limit_planner", "MongoDB database name")
	serveCmd.Flags().StringSliceVar(&allowedOrigins, "origins", []string{"*"}, "allowed CORS origins")
	serveCmd.Flags().StringVar(&warehouseColumn, "warehouse-column", "Электро", "snapshot column holding warehouse stock")
	serveCmd.Flags().StringVar(&environment, "environment", "development", "environment (development or production)")

	viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("mongo_uri", serveCmd.Flags().Lookup("mongo-uri"))
	viper.BindPFlag("mongo_db", serveCmd.Flags().Lookup("mongo-db"))
}

func runServe(cmd *cobra.Command, args []string) error {
	if environment == "production" {
		log, err := logger.NewLogger(logger.ServerConfig())
		if err != nil {
			return err
		}
		logger.SetGlobalLogger(log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	serverConfig, err := config.CreateServerConfig(viper.GetString("listen"), environment, warehouseColumn, allowedOrigins)
	if err != nil {
		return handleError(err)
	}

	store, err := storage.Connect(ctx, config.CreateStorageConfig(
		viper.GetString("mongo_uri"),
		viper.GetString("mongo_db"),
	))
	if err != nil {
		return handleError(err)
	}

	if err := store.EnsureIndexes(ctx); err != nil {
		return handleError(err)
	}

	srv := server.New(serverConfig, store)

	return srv.Run()
}
