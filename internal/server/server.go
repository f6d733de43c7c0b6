package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kartoza/solar-bmi/internal/api"
	"github.com/kartoza/solar-bmi/internal/config"
	"github.com/kartoza/solar-bmi/internal/logging"
	"github.com/kartoza/solar-bmi/internal/metrics"
	"github.com/kartoza/solar-bmi/internal/modelstore"
)

// Server holds all the components for one service process
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	store      *modelstore.Store
	metrics    *metrics.Registry
	log        *logrus.Logger

	watchCtx  context.Context
	stopWatch context.CancelFunc
}

// New creates a new Server with all components initialized.
// The solar service loads its model here unless configured per request.
func New(cfg config.Config) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		router:  mux.NewRouter(),
		metrics: metrics.New(),
		log:     logging.GetLogger(),
	}
	s.watchCtx, s.stopWatch = context.WithCancel(context.Background())

	if cfg.Server.Service == config.ServiceSolar {
		store, err := modelstore.New(cfg.Model.Path, modelstore.Mode(cfg.Model.Load),
			modelstore.WithLoadHook(s.metrics.ObserveModelLoad))
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	var source api.ModelSource
	if s.store != nil {
		source = s.store
	}
	api.NewHandler(s.cfg, source, s.metrics).RegisterRoutes(s.router)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP connections and, when enabled, watching
// the model artifact. It blocks until the server stops.
func (s *Server) Start() error {
	if s.store != nil && s.cfg.Model.Watch && s.store.Mode() == modelstore.ModeStartup {
		go func() {
			if err := s.store.Watch(s.watchCtx); err != nil {
				s.log.WithError(err).Warn("model watcher not running")
			}
		}()
	}

	s.log.WithFields(logrus.Fields{
		"addr":    s.httpServer.Addr,
		"service": s.cfg.Server.Service,
	}).Info("server listening")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.stopWatch()

	return s.httpServer.Shutdown(ctx)
}
