package main

import (
	"context"
	"errors"
	"freshkeep-backend/cmd/config"
	migration "freshkeep-backend/cmd/database/migrate"
	"freshkeep-backend/internal/utils"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	utils.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	rdb, err := config.ConnectRedis(ctx)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	server, err := config.NewApp(db, rdb)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}
	server.StartWorkers(ctx)

	port := utils.GetConfig("PORT")
	if port == "" {
		port = "8080"
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.App.Listen(":" + port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("server stopped", "error", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		if err := server.App.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}

	if err := server.Close(); err != nil {
		log.Warnw("close failed", "error", err)
	}
}
