// Package server exposes the summarizer over HTTP, with an optional gRPC
// health service for orchestrators that probe over gRPC.
package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/config"
	prserrors "github.com/gyapaarachchi-ifs/pr-summarizer/pkg/errors"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/orchestrator"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/store"
	"github.com/gyapaarachchi-ifs/pr-summarizer/pkg/summarizer"
)

// Service is the summary pipeline served over HTTP.
type Service interface {
	Summarize(ctx context.Context, req orchestrator.Request) (*summarizer.PRSummary, error)
	HealthCheck(ctx context.Context) orchestrator.Health
	Metrics() orchestrator.Metrics
}

// Server is the HTTP front end.
type Server struct {
	app    *fiber.App
	svc    Service
	store  store.Store
	jobs   *Runner
	logger *slog.Logger
	cfg    config.ServerConfig

	// ctx is the parent of every request context; Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the fiber app and registers every route.
func New(cfg config.ServerConfig, svc Service, st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		store:  st,
		logger: logger,
		cfg:    cfg,
		jobs:   NewRunner(svc, st, cfg.MaxConcurrentJobs, logger),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	app := fiber.New(fiber.Config{
		AppName:               "pr-summarizer",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleFiberError,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(RequestLogger(logger))
	app.Use(s.requestContext)
	if len(cfg.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/summary", s.createSummary)

	api := app.Group("/api/v1")
	api.Get("/health", s.health)
	if cfg.JWTSecret != "" {
		api.Use(BearerAuth([]byte(cfg.JWTSecret)))
	}
	api.Get("/metrics", s.metrics)
	api.Post("/summaries", s.createSummary)
	api.Post("/summaries/async", s.createSummaryAsync)
	api.Get("/summaries", s.listSummaries)
	api.Get("/summaries/:id", s.getSummary)
	api.Delete("/summaries/:id", s.cancelSummary)

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Jobs returns the async job runner.
func (s *Server) Jobs() *Runner {
	return s.jobs
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight requests and
// async jobs, up to the deadline of ctx. Requests and jobs still running at
// the deadline are cancelled.
func (s *Server) Shutdown(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()
	defer s.cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return prserrors.Wrap(err, "HTTP shutdown")
	}
	return s.jobs.Shutdown(ctx)
}

// requestContext gives each request a context derived from the server's,
// so upstream calls end when the server shuts down.
func (s *Server) requestContext(c *fiber.Ctx) error {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	c.SetUserContext(ctx)
	return c.Next()
}

func (s *Server) handleFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if prserrors.As(err, &fe) {
		return writeDetail(c, fe.Code, fe.Message)
	}
	s.logger.Error("unhandled request error", "path", c.Path(), "error", err)
	return writeError(c, err)
}
