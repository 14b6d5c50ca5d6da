// Package server wires configuration, storage, the transform pipeline, and
// the HTTP API into a single runnable service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	v1 "ctxpipe/api/v1"
	"ctxpipe/internal/config"
	"ctxpipe/internal/pipeline"
	"ctxpipe/internal/storage"
)

// Server hosts the transform API.
type Server struct {
	cfgPath string
	logger  zerolog.Logger
	db      *storage.DB
	reports *storage.ReportStore
	httpSrv *http.Server

	mu       sync.RWMutex
	cfg      *config.Config
	pipeline *pipeline.Pipeline
}

// New builds the service from the config at cfgPath. Pipeline
// misconfiguration fails here, before the listener starts.
func New(cfgPath string, logger zerolog.Logger) (*Server, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	transforms, err := config.Build(cfg)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	s := &Server{
		cfgPath:  cfgPath,
		logger:   logger,
		cfg:      cfg,
		pipeline: pipeline.New(transforms...).WithLogger(logger),
	}

	if cfg.Storage.Path != "" {
		db, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open report log: %w", err)
		}
		s.db = db
		s.reports = storage.NewReportStore(db)
	}

	router := mux.NewRouter()
	v1.NewHandler(s, s.reports, logger).RegisterRoutes(router)
	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	return s, nil
}

// Pipeline returns the current transform pipeline.
func (s *Server) Pipeline() *pipeline.Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pipeline
}

// Run starts the listener and the config watcher, blocking until ctx is
// cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go s.watchConfig(watchCtx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	s.logger.Info().Str("address", "http://"+s.httpSrv.Addr).Msg("ctxpipe server started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := s.httpSrv.Shutdown(shutdownCtx)
		s.close()
		return err
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// reload rebuilds the pipeline from the config file and swaps it in
// atomically. Server address and storage settings take effect on restart
// only; a reload never drops in-flight requests.
func (s *Server) reload() error {
	cfg, err := config.Load(s.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	transforms, err := config.Build(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.pipeline = pipeline.New(transforms...).WithLogger(s.logger)
	s.mu.Unlock()

	s.logger.Info().Int("stages", len(transforms)).Msg("pipeline reloaded")
	return nil
}

func (s *Server) close() {
	if s.db != nil {
		s.db.Close()
	}
}
