// Package server is the thin HTTP layer over the scrape pipeline.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"apkmirror/config"
	"apkmirror/scraper/apkfab"
	"apkmirror/storage"
	"apkmirror/utils"

	"github.com/gin-gonic/gin"
)

// Server wires the scraper and the visit store to gin routes
type Server struct {
	cfg     *config.Config
	logger  *utils.Logger
	scraper *apkfab.Scraper
	visits  storage.VisitStore
}

// New creates a Server. visits may be nil, which disables analytics.
func New(cfg *config.Config, logger *utils.Logger, s *apkfab.Scraper, visits storage.VisitStore) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger.With("component", "server"),
		scraper: s,
		visits:  visits,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))

	api := r.Group("/api")
	{
		api.GET("/categories", s.categories)
		api.GET("/category/:main", s.category)
		api.GET("/category/:main/:sub", s.category)
		api.GET("/hot/:type", s.hot)
		api.GET("/latest/:type", s.latest)
		api.GET("/developer/:name", s.developer)
		api.GET("/search", s.search)
		api.GET("/suggest", s.suggest)
		api.GET("/app/:slug/:package", s.appDetail)
		api.GET("/download/:slug/:package", s.download)
	}

	r.GET("/download-proxy", s.downloadProxy)

	track := r.Group("/", OpenCORS())
	track.POST("/log_visit", s.logVisit)
	track.OPTIONS("/log_visit", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		writeJSON(c, http.StatusNotFound, errorBody{Error: "not_found", Message: "page not found", RecoveryLink: "/"})
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", s.cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("Shutting down")
	return srv.Shutdown(shutdownCtx)
}
