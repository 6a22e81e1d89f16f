package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/skillsprint/roadmap-api/internal/adapters/gemini"
	"github.com/skillsprint/roadmap-api/internal/adapters/httpapi"
	memgenerator "github.com/skillsprint/roadmap-api/internal/adapters/memory/generator"
	"github.com/skillsprint/roadmap-api/internal/app/roadmaps"
	"github.com/skillsprint/roadmap-api/internal/app/skills"
	"github.com/skillsprint/roadmap-api/internal/platform/auth/jwtverifier"
	platformclock "github.com/skillsprint/roadmap-api/internal/platform/clock"
	"github.com/skillsprint/roadmap-api/internal/platform/config"
	"github.com/skillsprint/roadmap-api/internal/platform/logger"
	"github.com/skillsprint/roadmap-api/internal/platform/metrics"
	"github.com/skillsprint/roadmap-api/internal/platform/observability"
	"github.com/skillsprint/roadmap-api/internal/ports/out/generator"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, portFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if portFlag != "" {
		cfg.Port = portFlag
	}

	log, err := logger.New(cfg.Mode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: "skillsprint-api",
		Environment: cfg.Mode,
		Endpoint:    cfg.OTelEndpoint,
		Stdout:      os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	handler, cleanup, err := buildHandler(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("SkillSprint server is running",
			zap.String("addr", "http://localhost:"+cfg.Port),
			zap.String("mode", cfg.Mode),
			zap.String("auth_mode", cfg.AuthMode),
			zap.String("generator", cfg.GeneratorBackend),
			zap.Bool("gemini_configured", cfg.GeminiConfigured()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler wires adapters and services into the HTTP router.
func buildHandler(ctx context.Context, cfg config.Config, log *zap.Logger) (http.Handler, func(), error) {
	clk := platformclock.NewSystemClock()

	var authMW func(http.Handler) http.Handler
	switch cfg.AuthMode {
	case config.AuthModeDev:
		log.Warn("AUTH_MODE=dev: requests are authenticated by X-Debug-Subject; do not use in production")
		authMW = httpapi.NewDevAuthMiddleware(cfg.DevSubject)
	default:
		authMW = httpapi.NewAuthMiddleware(jwtverifier.New(cfg.Firebase), log)
	}

	gen, err := newGenerator(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	svc := roadmaps.NewService(gen, clk, log)
	svc.Metrics = collector

	api := httpapi.NewServer(svc, skills.Default(), clk, httpapi.ServerOptions{
		GeminiConfigured:  cfg.GeminiConfigured(),
		ExposeErrorDetail: cfg.IsDevelopment(),
		Log:               log,
	})

	opts := httpapi.RouterOptions{
		AuthMiddleware:    authMW,
		MetricsHandler:    metrics.Handler(reg),
		StatusRecorder:    collector,
		StaticFS:          os.DirFS(cfg.StaticDir),
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		ExposePanicDetail: cfg.IsDevelopment(),
		Log:               log,
	}
	cleanup := func() {}
	if cfg.RoadmapsPerMinute > 0 {
		rl := httpapi.NewRateLimiter(httpapi.RateLimiterConfig{PerMinute: cfg.RoadmapsPerMinute}, clk, log)
		rl.OnLimited = collector.RecordRateLimited
		opts.RoadmapLimiter = rl
		cleanup = rl.Stop
	}

	return httpapi.NewRouter(api, opts), cleanup, nil
}

func newGenerator(ctx context.Context, cfg config.Config, log *zap.Logger) (generator.Generator, error) {
	if cfg.GeneratorBackend == config.GeneratorStatic {
		log.Info("using canned roadmap generator")
		return memgenerator.NewCanned(), nil
	}
	if !cfg.GeminiConfigured() {
		log.Warn("GEMINI_API_KEY is not set; roadmap generation will fail until it is configured")
	}
	gen, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return gen, nil
}
