package main

import (
	"TomSelectAPI/internal/cache"
	"TomSelectAPI/internal/config"
	"TomSelectAPI/internal/db"
	"TomSelectAPI/internal/handler"
	"TomSelectAPI/internal/logger"
	"TomSelectAPI/internal/model"
	"TomSelectAPI/internal/router"
	"TomSelectAPI/internal/widget"
	"flag"
	"log"
	"net/http"

	"fmt"
	"os"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)

	// PostgreSQL

	if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("postgres_connected", nil)

	// Shared widget cache
	var store cache.Cache
	switch cfg.Cache.Backend {
	case "memory":
		store = cache.NewMemory()
		logger.Warn("cache_memory_backend", map[string]any{
			"hint": "widgets are only searchable on the process that rendered them",
		})
	default:
		db.InitRedis(cfg.Cache.RedisAddr)
		if err := db.PingRedis(); err != nil {
			logger.Error("redis_init_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		store = cache.NewRedis(db.RDB)
		logger.Info("redis_connected", nil)
	}

	// Initialize model registry
	if err := model.InitRegistry(cfg.ModelsDir); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("models_initialized", nil)

	registry := widget.NewRegistry(
		store,
		widget.NewSigner(cfg.Signing.Key),
		cfg.Cache.Prefix,
		cfg.Cache.TTL,
	)
	auto := &handler.Auto{
		Registry:  registry,
		Pool:      db.Pool,
		IDStrings: cfg.Response.IDStrings,
	}

	// Initialize routes
	router.InitRoutes(cfg, auto)

	// Start HTTP server
	logger.Info("server_start", map[string]any{"port": cfg.Port})
	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
