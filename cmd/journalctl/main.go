package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dfryer1193/journal/internal/cli"
	"github.com/dfryer1193/journal/internal/config"
	"github.com/dfryer1193/journal/internal/logger"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := &cli.Deps{
		Store: config.StoreFromEnv(),
		// stdout carries command output.
		Log: logger.NewWithWriter(config.LogConfig{
			Level: envOr("LOG_LEVEL", "warn"),
			Env:   envOr("ENV", "development"),
		}, os.Stderr),
	}

	err := cli.NewRootCmd(deps).ExecuteContext(ctx)
	if cerr := deps.Close(); cerr != nil {
		deps.Log.Warn().Err(cerr).Msg("Failed to close store")
	}
	if err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
