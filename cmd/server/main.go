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

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"becomebetter/internal/coach"
	"becomebetter/internal/config"
	"becomebetter/internal/database"
	"becomebetter/internal/handlers"
	"becomebetter/internal/logging"
	"becomebetter/internal/metrics"
	"becomebetter/internal/repository"
	"becomebetter/internal/scheduler"
	"becomebetter/internal/security"
	"becomebetter/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	status := handlers.NewStartupStatus()

	// Initialize database with config (supports sqlite, postgres, mysql)
	status.SetCurrentStep(handlers.StepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	status.CompleteStep(handlers.StepDatabase)
	logger.Info("database connection established", zap.String("type", cfg.DatabaseType))

	status.SetCurrentStep(handlers.StepMigrations)
	applied, err := db.RunMigrations(cfg.MigrationsPath)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	status.CompleteStep(handlers.StepMigrations)
	logger.Info("migrations completed", zap.Strings("applied", applied))

	status.SetCurrentStep(handlers.StepServices)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	updateRepo := repository.NewUpdateRepository(db)
	insightRepo := repository.NewInsightRepository(db)

	emailService, err := service.NewEmailService(ctx, logger, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.EmailDebug)
	if err != nil {
		logger.Warn("email disabled", zap.Error(err))
		emailService = service.NewDisabledEmailService(logger)
	}

	var generator coach.Generator
	gemini, err := coach.NewGenAIGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	switch {
	case errors.Is(err, coach.ErrNotConfigured):
		logger.Warn("insights disabled: no Gemini API key configured")
		generator = coach.DisabledGenerator{}
	case err != nil:
		return err
	default:
		generator = gemini
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, settingsRepo, emailService, cfg.SessionDuration, logger)
	goalService := service.NewGoalService(goalRepo, updateRepo, settingsRepo, m, logger)
	insightService := service.NewInsightService(goalRepo, updateRepo, insightRepo, settingsRepo, userRepo, generator, emailService, m, logger)
	reminderService := service.NewReminderService(settingsRepo, goalRepo, updateRepo, emailService, m, logger)
	settingsService := service.NewSettingsService(settingsRepo, logger)

	oauthProviders := map[string]handlers.OAuthProvider{}
	if cfg.GoogleOAuthEnabled() {
		oauthProviders["google"] = handlers.OAuthProvider{
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v3/userinfo",
			Issuers:     []string{"https://accounts.google.com", "accounts.google.com"},
		}
	}

	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	proxies, err := security.ParseProxyList(cfg.TrustedProxies)
	if err != nil {
		return err
	}
	limiter := security.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.TrustProxies(proxies)
	go limiter.RunCleanup(ctx, time.Minute)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService, csrf, limiter, m, logger)
	h := handlers.Handlers{
		Auth:     handlers.NewAuthHandler(authService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL, cfg.AppBaseURL, logger),
		Goals:    handlers.NewGoalHandler(goalService, insightService, logger),
		Settings: handlers.NewSettingsHandler(settingsService, logger),
		Guidance: handlers.NewGuidanceHandler(logger),
		Cron:     handlers.NewCronHandler(reminderService, cfg.CronSecret, logger),
		Health:   handlers.NewHealthHandler(status, db),
	}
	if cfg.MetricsUser != "" {
		h.Metrics = handlers.BasicAuth(cfg.MetricsUser, cfg.MetricsPass, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, middleware, h)
	status.CompleteStep(handlers.StepServices)

	status.SetCurrentStep(handlers.StepScheduler)
	sweep := scheduler.ReminderFunc(func(ctx context.Context, now time.Time) (scheduler.Sweep, error) {
		result, err := reminderService.Run(ctx, now)
		if err != nil {
			return scheduler.Sweep{}, err
		}
		return scheduler.Sweep{Sent: result.RemindersSent, Errors: result.Errors}, nil
	})
	sched := scheduler.New(ctx, sweep, authService, logger)
	if err := sched.RegisterAll(cfg.ReminderSchedule, cfg.CleanupSchedule); err != nil {
		return err
	}
	sched.Start()
	status.CompleteStep(handlers.StepScheduler)

	var handler http.Handler = middleware.Metrics(mux)
	handler = middleware.Logging(handler)
	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.CORSOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", handlers.CSRFHeaderName, "X-Request-ID"}),
		gorillahandlers.AllowCredentials(),
	)(handler)
	handler = gorillahandlers.RecoveryHandler(gorillahandlers.RecoveryLogger(zap.NewStdLog(logger)))(handler)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	status.CompleteStep(handlers.StepServer)

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			sched.Stop(context.Background())
			return fmt.Errorf("server failed: %w", err)
		}
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	logger.Info("server stopped")
	return nil
}
