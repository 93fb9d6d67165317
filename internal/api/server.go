package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stackreel/internal/config"
	"stackreel/internal/history"
	"stackreel/internal/layout"
	"stackreel/internal/logging"
	"stackreel/internal/metrics"
	"stackreel/internal/project"
	"stackreel/internal/render"
	"stackreel/internal/services"
)

// queueCapacity bounds the number of renders waiting for the worker.
const queueCapacity = 8

// ErrQueueFull is returned when no more renders can be queued.
var ErrQueueFull = errors.New("render queue is full")

// Renderer plans and renders projects.
type Renderer interface {
	Plan(ctx context.Context, proj *project.Project) (*layout.Plan, error)
	Render(ctx context.Context, proj *project.Project) (*render.Result, error)
}

type job struct {
	sessionID string
	proj      *project.Project
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	renderer Renderer
	store    *history.Store
	metrics  *metrics.Metrics
	logger   *slog.Logger

	jobs    chan job
	pending sync.Map
	busy    atomic.Bool
	worker  sync.Once
	wg      sync.WaitGroup

	listener net.Listener
	server   *http.Server
}

// NewServer wires a server. store and m may be nil.
func NewServer(cfg *config.Config, renderer Renderer, store *history.Store, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		renderer: renderer,
		store:    store,
		metrics:  m,
		logger:   logging.NewComponentLogger(logger, "api"),
		jobs:     make(chan job, queueCapacity),
	}
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(LoggingMiddleware(s.logger))
	r.Use(metrics.RequestMiddleware(s.metrics))

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/plan", s.handlePlan)
	r.Route("/api/renders", func(r chi.Router) {
		r.Get("/", s.handleListRenders)
		r.Post("/", s.handleSubmitRender)
		r.Get("/{id}", s.handleGetRender)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// Start listens on the configured bind address and starts the render worker.
// Both stop when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		return services.Wrap(services.ErrConfiguration, "api", "listen", "paths.api_bind is empty", nil)
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.StartWorker(ctx)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

// Wait blocks until the render worker has exited.
func (s *Server) Wait() {
	s.wg.Wait()
}

// StartWorker launches the render worker once. Queued renders run one at a
// time; a cancelled ctx cancels the running render and stops the worker.
func (s *Server) StartWorker(ctx context.Context) {
	s.worker.Do(func() {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j := <-s.jobs:
					s.runJob(ctx, j)
				}
			}
		}()
	})
}

func (s *Server) runJob(ctx context.Context, j job) {
	s.busy.Store(true)
	defer s.busy.Store(false)
	defer s.pending.Delete(j.sessionID)
	jobCtx := services.WithRequestID(ctx, j.sessionID)
	if _, err := s.renderer.Render(jobCtx, j.proj); err != nil {
		logging.WithContext(jobCtx, s.logger).Warn("queued render failed",
			logging.String(logging.FieldEventType, "queued_render_failed"),
			logging.String("project", j.proj.Name),
			logging.Error(err),
		)
	}
}

// Submit queues proj and returns its session id.
func (s *Server) Submit(proj *project.Project) (string, error) {
	j := job{sessionID: uuid.NewString(), proj: proj}
	s.pending.Store(j.sessionID, struct{}{})
	select {
	case s.jobs <- j:
		return j.sessionID, nil
	default:
		s.pending.Delete(j.sessionID)
		return "", ErrQueueFull
	}
}
