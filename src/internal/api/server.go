package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/echoreply/ifconf/src/internal/domain"
	"github.com/echoreply/ifconf/src/internal/log"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(bindAddr string, deps *domain.AppDependencies) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         bindAddr,
			Handler:      NewRouter(deps),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	log.Infof("[API] Starting server on %s", s.httpServer.Addr)
	log.Infof("[API] Example: curl http://%s/api/v1/interfaces", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
