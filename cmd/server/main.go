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
	"golang.org/x/sync/errgroup"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/config"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/handlers"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/llm"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/llm/gemini"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/llm/openai"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/logging"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/metrics"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/router"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.LoadGateway()

	logger := logging.New(cfg.LogLevel, cfg.LogFilePath, cfg.IsProduction())
	defer logger.Sync()
	logger.Info("🚀 Starting CampusAI gateway...")

	// ──── Step 2: Initialize LLM Provider ────
	provider, closeProvider, err := newProvider(cfg)
	if err != nil {
		logger.Fatal("✗ LLM provider initialization failed", zap.Error(err))
	}
	defer closeProvider()
	logger.Info("✓ LLM provider initialized",
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.LLMModel),
	)

	// ──── Step 3: Initialize Metrics ────
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gatewayMetrics := metrics.NewGateway(registry)

	// ──── Step 4: Initialize Services and Handlers ────
	chatService := services.NewChatService(
		provider,
		cfg.RateLimitRetryDelay,
		cfg.SystemPrompt,
		services.NewFileExtractService(),
		gatewayMetrics,
		logger,
	)
	chatHandler := handlers.NewChatHandler(chatService, cfg.MaxUploadSize, logger)

	// ──── Step 5: Start HTTP Servers ────
	servers := []*http.Server{{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     router.New(chatHandler, logger, cfg.CORSOrigin),
		ReadTimeout: 60 * time.Second,
		// Replies may wait out a rate-limit retry on top of the upstream call.
		WriteTimeout: cfg.UpstreamTimeout + cfg.RateLimitRetryDelay + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}}
	if cfg.MetricsPort != "" {
		servers = append(servers, &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.MetricsPort),
			Handler:      metrics.Handler(registry),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("✓ Listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown incomplete", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})

	logger.Info("✓ CampusAI gateway ready", zap.String("chat", fmt.Sprintf("http://localhost:%s/api/chat", cfg.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("Server error", zap.Error(err))
		os.Exit(1)
	}
}

func newProvider(cfg *config.Config) (llm.Provider, func(), error) {
	switch cfg.LLMProvider {
	case "gemini":
		p, err := gemini.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil
	default:
		p := openai.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel, cfg.UpstreamTimeout)
		return p, func() {}, nil
	}
}
