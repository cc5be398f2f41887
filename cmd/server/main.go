package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/duelforge/duel-server/internal/app"
	"github.com/duelforge/duel-server/internal/config"
	"github.com/duelforge/duel-server/internal/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (yaml)")
		addr       = flag.String("addr", "", "HTTP listen address (overrides config)")
		publicURL  = flag.String("public-url", "", "base URL used in join links (overrides config)")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	)
	flag.Parse()

	cfg, cfgPath, err := config.Load(nil, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *publicURL != "" {
		cfg.PublicURL = *publicURL
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := log.New(cfg.LogLevel)
	logger.Info().Str("config", cfgPath).Str("addr", cfg.Addr).Msg("starting duel server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg, logger)
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
