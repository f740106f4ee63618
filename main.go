package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"apkmirror/config"
	"apkmirror/fetcher"
	"apkmirror/scraper/apkfab"
	"apkmirror/server"
	"apkmirror/storage"
	"apkmirror/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	os.Exit(run())
}

// run owns every deferred cleanup, so exiting happens only after it returns
func run() int {
	// ================== Bootstrap ====================
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	logger.Info("App mirror for %s, served as %s", cfg.SourceDomain, cfg.UserDomain)
	logger.Info("Fetch mode: %s | Request timeout: %s | Detail timeout: %s",
		cfg.FetchMode, cfg.RequestTimeout, cfg.DetailTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =================== Analytics (optional) ========================
	var visits storage.VisitStore
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresVisitStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Error("Cannot connect to PostgreSQL: %v", err)
			return 1
		}
		defer pg.Close()

		if err := pg.CreateTable(ctx); err != nil {
			logger.Error("Failed to create visits table: %v", err)
			return 1
		}
		visits = pg
	} else {
		logger.Warn("DATABASE_URL not set, visit logging disabled")
	}

	// =============== Scrape pipeline ===================================
	f, release := fetcher.New(cfg, logger)
	defer release()
	scraper := apkfab.NewScraper(cfg, logger, f)

	// ========= HTTP ===========================
	if err := server.New(cfg, logger, scraper, visits).Run(ctx); err != nil {
		logger.Error("Server stopped: %v", err)
		return 1
	}
	return 0
}
