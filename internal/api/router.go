// Package api exposes the fitting engine and the result store over HTTP.
package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/RectFit/internal/engine"
	"github.com/piwi3910/RectFit/internal/model"
	"github.com/piwi3910/RectFit/internal/store"
)

// Server holds the dependencies shared by the handlers.
type Server struct {
	settings model.FitSettings
	store    store.Store
	cache    *engine.GridCache
	logger   *slog.Logger
}

// NewRouter builds the gin engine with all routes registered. st may be
// nil, in which case results are never stored and lookups return 404.
func NewRouter(settings model.FitSettings, st store.Store, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		settings: settings,
		store:    st,
		cache:    engine.NewGridCache(),
		logger:   logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", s.health)

	v1 := r.Group("/api/v1")
	v1.POST("/fit", s.fit)
	v1.GET("/results/:key", s.result)
	v1.GET("/results", s.results)
	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
