package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Nachikxt91/feedback-backend/internal/config"
	"github.com/Nachikxt91/feedback-backend/internal/database"
	"github.com/Nachikxt91/feedback-backend/internal/handlers"
	"github.com/Nachikxt91/feedback-backend/internal/llm"
	custommw "github.com/Nachikxt91/feedback-backend/internal/middleware"
	"github.com/Nachikxt91/feedback-backend/internal/notify"
	"github.com/Nachikxt91/feedback-backend/internal/repository"
	"github.com/Nachikxt91/feedback-backend/internal/service"
)

var version = "1.0.0"

func newLogger() *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)
	return zap.New(core).Sugar()
}

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg := config.Load()

	if cfg.MongoURI == "" {
		logger.Fatal("❌ MONGODB_URI is required")
	}
	if cfg.GeminiAPIKey == "" {
		logger.Fatal("❌ GEMINI_API_KEY is required")
	}
	if cfg.AdminAPIKey == "" {
		logger.Fatal("❌ ADMIN_API_KEY is required")
	}

	// Connect to MongoDB
	if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
		logger.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	logger.Info("✅ Connected to MongoDB")

	// Initialize repositories
	feedbackRepo := repository.NewFeedbackRepo()
	insightRepo := repository.NewInsightRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := feedbackRepo.EnsureIndexes(ctx); err != nil {
		logger.Warnf("⚠️  Failed to create feedback indexes: %v", err)
	}

	// LLM client
	llmClient, err := llm.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		logger.Fatalf("❌ Failed to create LLM client: %v", err)
	}
	defer llmClient.Close()

	// Alerts go to email when Resend is configured, the log otherwise
	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.ResendAPIKey != "" && cfg.AlertEmail != "" {
		notifier = notify.NewEmailNotifier(cfg.ResendAPIKey, cfg.FromEmail, cfg.AlertEmail)
	}

	svc := service.NewFeedbackService(feedbackRepo, insightRepo, llmClient, notifier, logger)

	feedbackHandler := handlers.NewFeedbackHandler(svc, logger, version)
	adminHandler := handlers.NewAdminHandler(svc, logger)

	limiter := custommw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public routes
	r.Get("/api/health", feedbackHandler.Health)
	r.With(limiter.Handler).Post("/api/feedback", feedbackHandler.SubmitFeedback)

	// Admin routes (API key required)
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(custommw.APIKeyAuth(cfg.AdminAPIKey))

		r.Get("/feedbacks", adminHandler.ListFeedbacks)
		r.Get("/feedbacks/{id}", adminHandler.GetFeedback)
		r.Get("/analytics", adminHandler.Analytics)
		r.Get("/insights", adminHandler.Insights)
		r.Post("/import/csv", adminHandler.ImportCSV)
		r.Get("/export/csv", adminHandler.ExportCSV)
		r.Get("/export/json", adminHandler.ExportJSON)
		r.Post("/process-pending", adminHandler.ProcessPending)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Graceful shutdown: drain in-flight requests, then close Mongo.
	shutdown := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		logger.Infow("signal caught", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdown <- srv.Shutdown(ctx)
	}()

	logger.Infof("🚀 Feedback backend starting on port %s", cfg.Port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("❌ Server failed: %v", err)
	}
	if err := <-shutdown; err != nil {
		logger.Errorf("⚠️  Shutdown did not finish cleanly: %v", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Disconnect(ctx); err != nil {
		logger.Errorf("⚠️  Failed to disconnect from MongoDB: %v", err)
	}
	logger.Info("👋 Server stopped")
}
