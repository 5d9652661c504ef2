// Package api serves read-only pool queries over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ammScope/internal/amm"
)

// Server exposes one pool.
type Server struct {
	pool   *amm.Pool
	logger *zap.Logger
	router *gin.Engine
}

// NewServer builds the router. gatherer may be nil to leave /metrics out.
func NewServer(pool *amm.Pool, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		pool:   pool,
		logger: logger,
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())

	s.router.GET("/reserves", s.handleReserves)
	s.router.GET("/quote", s.handleQuote)
	s.router.GET("/rate", s.handleRate)
	s.router.GET("/shares/:holder", s.handleShares)
	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		apiErr = ErrQueryFailed
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
}
