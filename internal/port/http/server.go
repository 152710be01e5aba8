package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
)

type Server struct {
	httpServer      *http.Server
	log             logger.Logger
	port            string
	timeoutGraceful time.Duration
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	TimeoutGraceful time.Duration
}

func NewServer(log logger.Logger, cfg ServerConfig, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log:             log,
		port:            cfg.Port,
		timeoutGraceful: cfg.TimeoutGraceful,
	}
}

// Start blocks until the server stops. A graceful Stop is not an error.
func (s *Server) Start() error {
	s.log.Infof("HTTP server is starting on port %s", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed to serve: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server is stopping gracefully")

	if s.timeoutGraceful > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeoutGraceful)
		defer cancel()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}
