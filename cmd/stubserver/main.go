package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"reppy/coach-client/internal/config"
	"reppy/coach-client/internal/logging"
	"reppy/coach-client/internal/stubserver"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer logger.Sync()

	stub := stubserver.New(stubserver.Config{
		JWTSecret:     cfg.Stub.JWTSecret,
		JWTExpiration: cfg.Stub.JWTExpiration,
		StreamDelay:   cfg.Stub.StreamDelay,
	}, logger)

	server := &http.Server{
		Addr:        cfg.Stub.Address,
		Handler:     stub.Router(),
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: the chat SSE stream outlives any fixed deadline.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("stub server starting", zap.String("address", cfg.Stub.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
