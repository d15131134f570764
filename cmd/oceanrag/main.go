// Command oceanrag is a retrieval-augmented generation pipeline for ocean
// sustainability documents.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oceanum-labs/oceanrag/internal/adapters/driving/cli"
	"github.com/oceanum-labs/oceanrag/internal/logger"
)

func main() {
	// Environment variables are optional; a missing .env is fine.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded environment from .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
