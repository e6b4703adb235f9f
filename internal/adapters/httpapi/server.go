package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bearcrabs/bookbot/internal/ports"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	aliveText       = "I'm alive!"
	shutdownTimeout = 5 * time.Second
	readTimeout     = 5 * time.Second
)

// SessionCounter reports how many dialogue sessions are open.
type SessionCounter interface {
	Len() int
}

// Server is the keep-alive endpoint hosting platforms poll to keep the bot awake.
type Server struct {
	addr     string
	router   *gin.Engine
	sessions SessionCounter
	clock    ports.Clock
	started  time.Time
	logger   *zap.Logger
}

func NewServer(addr string, sessions SessionCounter, clock ports.Clock, logger *zap.Logger) *Server {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		addr:     addr,
		sessions: sessions,
		clock:    clock,
		started:  clock.Now(),
		logger:   logger.Named("httpapi"),
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())
	_ = router.SetTrustedProxies(nil)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, aliveText)
	})
	router.GET("/health", s.health)

	s.router = router
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	sessions := 0
	if s.sessions != nil {
		sessions = s.sessions.Len()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"sessions":       sessions,
		"uptime_seconds": int64(s.clock.Now().Sub(s.started) / time.Second),
	})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("keep-alive server listening", zap.String("addr", listener.Addr().String()))
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}

	s.logger.Info("keep-alive server stopped")
	return nil
}
