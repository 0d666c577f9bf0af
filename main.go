package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dmytrop/nbu-agent/internal/adapter/llm"
	"github.com/dmytrop/nbu-agent/internal/adapter/nbu"
	"github.com/dmytrop/nbu-agent/internal/config"
	"github.com/dmytrop/nbu-agent/internal/guard"
	"github.com/dmytrop/nbu-agent/internal/service"
	"github.com/dmytrop/nbu-agent/internal/store"
	"github.com/dmytrop/nbu-agent/internal/tools"
	httptransport "github.com/dmytrop/nbu-agent/internal/transport/http"
	"github.com/dmytrop/nbu-agent/policy"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.DebugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting currency chat agent",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("llm_model", cfg.LLMModel),
		zap.String("database", cfg.DatabaseDSN))

	// Initialize session store
	db, err := store.NewSQLiteStore(cfg.DatabaseDSN, cfg.HistoryLimit)
	if err != nil {
		logger.Fatal("Failed to initialize session store", zap.Error(err))
	}
	defer db.Close()

	// Initialize policy engine and input guard
	ctx := context.Background()
	policyEngine, err := policy.NewEngineFromFile(ctx, cfg.PolicyFile)
	if err != nil {
		logger.Fatal("Failed to initialize policy engine", zap.Error(err))
	}
	validator := guard.NewValidator(policyEngine, cfg.SanitizeMaxLen, logger)

	// Initialize LLM client
	llmClient := llm.NewLLMClient(cfg.LLMMode, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMTimeout)

	// Initialize NBU client and tools
	nbuClient := nbu.NewClient(cfg.NBUBaseURL, cfg.NBUTimeout)
	registry := tools.NewRegistry()
	registry.Register(tools.CurrencyToolDefinition(), tools.NewCurrencyExecutor(nbuClient))

	// Initialize service
	svc := service.New(db, llmClient, registry, validator, nbuClient, service.Options{
		Model:         cfg.LLMModel,
		Temperature:   cfg.LLMTemperature,
		MaxIterations: cfg.MaxToolIterations,
	}, logger)

	// Create HTTP server
	server := httptransport.NewServer(svc)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("HTTP server started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("Stopped")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
