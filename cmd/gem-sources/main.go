// Package main is the entry point for the gem-sources command.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/stacklok/gem-sources/cmd/gem-sources/app"
	"github.com/stacklok/gem-sources/internal/config"
	"github.com/stacklok/gem-sources/internal/logger"
)

// getLogLevel reads GEM_SOURCES_LOG_LEVEL, falling back to LOG_LEVEL.
// Flags are applied later, once the command line is parsed.
func getLogLevel() string {
	v := config.NewViper()
	if lvl := v.GetString(config.KeyLogLevel); lvl != "" {
		return lvl
	}
	return os.Getenv("LOG_LEVEL")
}

func main() {
	logger.Initialize(getLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
