package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/config"
	"github.com/Yukoval-Dakia/stone/internal/repository"
	"github.com/Yukoval-Dakia/stone/internal/server"
	"github.com/Yukoval-Dakia/stone/pkg/logger"
)

func main() {
	log, err := logger.New()
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewMongoStore(&cfg.Mongo, log)
	if err := store.Connect(ctx); err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	go store.Supervise(ctx)

	srv, err := server.New(cfg, log, store)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	go func() {
		if err := srv.Run(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error("Failed to close MongoDB connection", zap.Error(err))
	}

	log.Info("Server exited")
}
