package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Tzeene1459/ncit-semantic-mapper/internal/config"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/core"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/driver"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/llm"
	"github.com/Tzeene1459/ncit-semantic-mapper/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("could not load config file, using defaults", zap.String("path", cfgPath), zap.Error(err))
		cfg = config.Default()
	}
	applyEnvOverrides(cfg)

	ctx := context.Background()

	graph, err := driver.NewNeo4jAccessor(ctx, driver.Neo4jOptions{
		URI:            cfg.Graph.URI,
		User:           cfg.Graph.User,
		Password:       cfg.Graph.Password,
		MaxPoolSize:    cfg.Graph.MaxPoolSize,
		ConnectTimeout: time.Duration(cfg.Graph.ConnectTimeoutSeconds) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("failed to connect to graph", zap.Error(err))
	}
	defer graph.Close(ctx)

	embedder, err := llm.NewEmbedder(ctx, cfg.Embedding)
	if err != nil {
		logger.Fatal("failed to init embedding client", zap.Error(err))
	}

	resolver := core.NewResolver(graph, embedder, cfg, logger)
	srv := server.New(resolver, logger)
	router := srv.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting server", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

// Environment reading stays in this bootstrap layer; the core only sees
// explicit config values.
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Graph.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		cfg.Graph.User = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
}
