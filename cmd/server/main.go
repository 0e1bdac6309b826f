package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fisbench/internal/accounting"
	"fisbench/internal/cache/redis"
	"fisbench/internal/config"
	"fisbench/internal/handler"
	"fisbench/internal/llm"
	"fisbench/internal/llm/claude"
	"fisbench/internal/llm/gemini"
	"fisbench/internal/llm/openai"
	"fisbench/internal/logger"
	"fisbench/internal/ocr"
	"fisbench/internal/port"
	"fisbench/internal/repository/postgres"
	"fisbench/internal/router"
	"fisbench/internal/service"
	s3storage "fisbench/internal/storage/s3"
	"fisbench/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerLLMProviders() {
	llm.RegisterProvider("openai", func(cfg *config.LLMProviderConfig) (port.ChatCompleter, error) {
		return openai.NewClient(cfg), nil
	})
	llm.RegisterProvider("claude", func(cfg *config.LLMProviderConfig) (port.ChatCompleter, error) {
		return claude.NewClient(cfg), nil
	})
	llm.RegisterProvider("gemini", func(cfg *config.LLMProviderConfig) (port.ChatCompleter, error) {
		return gemini.NewClient(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	promptRepo := postgres.NewPromptRepo(db)
	analysisRepo := postgres.NewAnalysisRepo(db)
	ocrResultRepo := postgres.NewOCRResultRepo(db)
	evalRepo := postgres.NewEvaluationRepo(db)
	receiptRepo := postgres.NewReceiptRepo(db)
	promptTestRepo := postgres.NewPromptTestRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	readiness := map[string]handler.Pinger{"database": db}

	var ocrCache port.OCRCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		ocrCache = redis.NewOCRCache(rdb)
		readiness["cache"] = redis.NewPinger(rdb)
		appLog.Info("ocr cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.OCR.CacheTTL)
	}

	// Initialize LLM and OCR providers
	registerLLMProviders()
	chat, err := llm.NewFromConfig(&cfg.LLM, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize llm client: %w", err)
	}

	ocrProviders, err := ocr.NewFromConfig(ctx, &cfg.OCR, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize ocr providers: %w", err)
	}
	defer func() { _ = ocrProviders.Close() }()

	// Accounting pipeline
	registry := accounting.NewRegistry(cfg.Accounting.SchemaCutoff, appLog)
	corrector := accounting.NewCorrector(registry, appLog)
	converter := accounting.NewConverter(accounting.NewReconciler(appLog), appLog)
	rules := validator.NewEngine(nil, appLog)

	// Initialize services
	promptSvc := service.NewPromptService(promptRepo, registry, appLog)
	accountingSvc := service.NewAccountingService(chat, promptSvc, corrector, converter, rules,
		&cfg.Accounting, &cfg.LLM.Primary, appLog)
	analysisSvc := service.NewAnalysisService(analysisRepo, ocrResultRepo, evalRepo, s3Client,
		ocrProviders, ocrCache, accountingSvc, cfg, appLog)
	receiptSvc := service.NewReceiptService(receiptRepo, s3Client, &cfg.S3, &cfg.Upload, appLog)
	promptTestSvc := service.NewPromptTestService(promptTestRepo, receiptRepo, s3Client,
		ocrProviders, ocrCache, accountingSvc, registry, cfg, appLog)

	// Initialize handlers
	maxBytes := cfg.Upload.MaxBytes()
	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(readiness),
		Analysis:   handler.NewAnalysisHandler(analysisSvc, maxBytes, appLog),
		Accounting: handler.NewAccountingHandler(accountingSvc, appLog),
		Prompt:     handler.NewPromptHandler(promptSvc, appLog),
		PromptTest: handler.NewPromptTestHandler(promptTestSvc, appLog),
		Receipt:    handler.NewReceiptHandler(receiptSvc, maxBytes, appLog),
	}

	r := router.Setup(cfg, handlers, appLog)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("server starting", "addr", cfg.Server.Port, "environment", cfg.Server.Environment,
			"ocr_providers", ocrProviders.IDs())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
