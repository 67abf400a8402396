// Package api implements the HTTP surface: load a series, run detection on
// it, correlate two series, and ask for a root-cause analysis.
package api

import (
	"context"
	"fmt"
	"net/http"

	"tsanomaly/internal/config"
	"tsanomaly/internal/notify"
	"tsanomaly/internal/rootcause"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wraps the gin router and the net/http.Server serving it.
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	srv      *http.Server
	store    *Store
	rca      *rootcause.Analyzer
	notifier *notify.Notifier
}

// NewServer builds a Server bound to cfg.Port, with an empty in-memory
// series store and a root-cause analyzer built with a zero TTL, so its
// result cache is disabled.
func NewServer(cfg *config.Config) (*Server, error) {
	router := gin.Default()
	router.Use(gin.Recovery())

	store := NewStore()
	rca := rootcause.NewAnalyzer(cfg.DefaultAlgorithm, 0)
	notifier := notify.NewNotifier(cfg.Notify)

	s := &Server{
		cfg:      cfg,
		router:   router,
		store:    store,
		rca:      rca,
		notifier: notifier,
	}
	s.setupRoutes()

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}
	return s, nil
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Store returns the server's in-memory series store, so a caller (the demo
// binary's rescore scheduler) can share it instead of keeping a second copy.
func (s *Server) Store() *Store {
	return s.store
}

// Notifier returns the server's notification dispatcher, so the rescore
// scheduler can share it instead of building its own.
func (s *Server) Notifier() *notify.Notifier {
	return s.notifier
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		series := v1.Group("/series")
		{
			series.GET("", s.listSeries)
			series.PUT("/:name", s.putSeries)
			series.POST("/:name/detect", s.detect)
			series.POST("/:name/correlate/:other", s.correlate)
			series.GET("/:name/rootcause", s.rootcauseHandler)
		}
	}
}
