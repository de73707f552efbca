package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/trainflow/strategy-engine/internal/chat"
	"github.com/trainflow/strategy-engine/internal/config"
	"github.com/trainflow/strategy-engine/internal/logger"
	"github.com/trainflow/strategy-engine/internal/naming"
	"github.com/trainflow/strategy-engine/internal/storage"
	syncstore "github.com/trainflow/strategy-engine/internal/sync"
	"github.com/trainflow/strategy-engine/internal/tools"
)

// Server exposes the chat pipeline and strategy store as a JSON API.
type Server struct {
	httpServer *http.Server
	chat       *chat.Service
	registry   *tools.Registry
	namer      *naming.Coordinator
	repo       *storage.Repository
	store      *syncstore.Store
	config     *config.Config
	logger     *logger.Logger
}

func NewServer(svc *chat.Service, registry *tools.Registry, namer *naming.Coordinator,
	repo *storage.Repository, store *syncstore.Store, cfg *config.Config, log *logger.Logger) *Server {
	s := &Server{
		chat:     svc,
		registry: registry,
		namer:    namer,
		repo:     repo,
		store:    store,
		config:   cfg,
		logger:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /strategies", s.handleListStrategies)
	mux.HandleFunc("GET /strategies/{id}", s.handleGetStrategy)
	mux.HandleFunc("POST /strategies/{id}/backtest", s.handleBacktest)
	mux.HandleFunc("GET /strategies/{id}/events", s.handleWatchStrategy)
	mux.HandleFunc("POST /tools", s.handleTool)
	mux.HandleFunc("GET /names/check", s.handleCheckName)

	// No WriteTimeout: completions can take minutes and the events
	// endpoint streams indefinitely.
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("web server starting", "port", s.config.Web.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
