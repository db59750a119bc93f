package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"scontrini/internal/amqp"
	"scontrini/internal/chart"
	"scontrini/internal/config"
	"scontrini/internal/extraction"
	apphttp "scontrini/internal/http"
	applog "scontrini/internal/log"
	"scontrini/internal/services"
	"scontrini/internal/storage"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	extractor, err := newExtractor(cfg)
	if err != nil {
		logger.Error("Failed to initialize extractor", "error", err, "extractor", cfg.Extractor)
		os.Exit(1)
	}
	defer extractor.Close()
	logger.Info("Extractor initialized", "extractor", cfg.Extractor)

	// Event publishing is optional; without a broker URL saves simply go
	// unannounced.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	summarizer := services.NewSummarizer(extractor, repo, chart.NewPieRenderer(), publisher, cfg.TopN)
	srv := apphttp.NewServer(":"+cfg.Port, summarizer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting scontrini server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func newExtractor(cfg *config.Config) (extraction.Extractor, error) {
	switch cfg.Extractor {
	case config.ExtractorOpenAI:
		return extraction.NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.ExtractionTimeout)
	default:
		return extraction.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ExtractionTimeout)
	}
}
