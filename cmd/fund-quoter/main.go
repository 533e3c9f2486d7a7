package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/symmetryfi/fund-quoter/internal/chain"
	"github.com/symmetryfi/fund-quoter/internal/config"
	"github.com/symmetryfi/fund-quoter/internal/logging"
	"github.com/symmetryfi/fund-quoter/internal/quoteserver"
	"golang.org/x/sync/errgroup"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	bootstrapLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrapLogger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, closeLogger, err := logging.New("fund-quoter", cfg.Log)
	if err != nil {
		bootstrapLogger.Error("failed to initialize logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := closeLogger(); closeErr != nil {
			bootstrapLogger.Error("failed to close logger", "err", closeErr)
		}
	}()

	if source, sourceErr := config.CurrentConfigSource(); sourceErr == nil {
		logger.Info("configuration loaded", "phase", source.Phase, "path", source.Path, "loaded", source.Loaded)
	}

	client := chain.New(cfg, logger)
	server := quoteserver.New(cfg, logger, client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return client.Run(groupCtx) })
	group.Go(func() error { return server.Run(groupCtx) })

	if err := group.Wait(); err != nil {
		logger.Error("fund-quoter exited with error", "err", err)
		os.Exit(1)
	}
}
