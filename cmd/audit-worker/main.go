// Command audit-worker consumes booking lifecycle events and appends them
// to the audit log.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/local-services-marketplace/internal/config"
	"github.com/iliyamo/local-services-marketplace/internal/logger"
	"github.com/iliyamo/local-services-marketplace/internal/queue"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.App.Env, cfg.App.LogLevel, "audit-worker")

	audit, f, err := queue.OpenAuditLog(cfg.Audit.LogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("audit log unavailable")
	}
	defer func() { _ = f.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", cfg.AMQP.Queue).Str("path", cfg.Audit.LogPath).Msg("consuming")
	if err := queue.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Queue, audit.Handle, log).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("consumer stopped")
	}
}
