package main

import (
	"context"
	"os/signal"
	"syscall"

	"iuris/internal/config"
	"iuris/internal/gateway"
	"iuris/internal/queue"
	"iuris/internal/server"
	"iuris/internal/transcriber"
	"iuris/pkg/logger"
	"iuris/pkg/metrics"

	"go.uber.org/zap"
)

func main() {
	// Load configuration (.env included)
	cfg, cfgErr := config.LoadConfig(config.Path())

	// Initialize logger
	if err := logger.Init(cfg != nil && cfg.Log.Debug); err != nil {
		panic("Failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	if cfgErr != nil {
		logger.Fatal("Failed to load config", zap.Error(cfgErr))
	}

	logger.Info("Starting iuris transcription gateway")

	// Initialize OpenAI transcription client
	openaiClient, err := transcriber.NewClient(transcriber.Options{
		APIKey:   cfg.OpenAI.APIKey,
		BaseURL:  cfg.OpenAI.BaseURL,
		Model:    cfg.OpenAI.Model,
		Language: cfg.OpenAI.Language,
		Prompt:   cfg.OpenAI.Prompt,
	})
	if err != nil {
		logger.Fatal("Failed to create transcription client", zap.Error(err))
	}

	logger.Info("Transcription client initialized", zap.String("model", openaiClient.Model()))

	// Connect to RabbitMQ when configured
	var publisher gateway.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer rabbitMQ.Close()

		publisher = rabbitMQ
		logger.Info("Transcription events enabled")
	}

	m := metrics.NewMetrics()

	gw := gateway.NewGateway(openaiClient, publisher, m, gateway.Options{
		TempDir:         cfg.Transcribe.TempDir,
		DefaultSuffix:   cfg.Transcribe.DefaultSuffix,
		MultipartMemory: cfg.Transcribe.MultipartMemory,
	})

	router := server.NewRouter(gw.HandleTranscribe, m, server.RouterOptions{
		RouteAliases:   cfg.Transcribe.RouteAliases,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := server.NewServer(cfg.Addr(), router, cfg.HTTP.ReadHeaderTimeout, cfg.HTTP.ShutdownTimeout)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("HTTP server failed", zap.Error(err))
		return
	}

	logger.Info("Gateway shutdown complete")
}
