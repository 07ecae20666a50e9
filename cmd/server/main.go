// Command server runs the marketplace HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/local-services-marketplace/internal/cache"
	"github.com/iliyamo/local-services-marketplace/internal/config"
	"github.com/iliyamo/local-services-marketplace/internal/database"
	"github.com/iliyamo/local-services-marketplace/internal/handler"
	"github.com/iliyamo/local-services-marketplace/internal/logger"
	"github.com/iliyamo/local-services-marketplace/internal/queue"
	"github.com/iliyamo/local-services-marketplace/internal/repository"
	"github.com/iliyamo/local-services-marketplace/internal/router"
	"github.com/iliyamo/local-services-marketplace/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.App.Env, cfg.App.LogLevel, "marketplace-api")

	db, err := database.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer func() { _ = db.Close() }()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable; rate limiting, caching and idempotency disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	gen := cache.NewGeneration(rdb, cfg.Cache.Prefix)

	var events service.EventPublisher
	if cfg.AMQP.Enabled {
		events = queue.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, log)
	}

	accounts := repository.NewAccountRepo(db)
	services := repository.NewServiceRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)
	tickets := repository.NewSupportTicketRepo(db)

	identity := service.NewIdentityService(accounts, cfg.Auth, log, nil)
	catalog := service.NewCatalogService(services, accounts, reviews, gen, log)
	booking := service.NewBookingService(bookings, services, events, cfg.Location(), log, nil)
	review := service.NewReviewService(reviews, bookings, services, events, gen, log, nil)
	support := service.NewSupportService(tickets, log)

	e := router.New(router.Deps{
		Cfg:           cfg,
		Log:           log,
		Redis:         rdb,
		Gen:           gen,
		DB:            db,
		Resolver:      identity,
		Auth:          handler.NewAuthHandler(identity),
		Services:      handler.NewServiceHandler(catalog),
		Bookings:      handler.NewBookingHandler(booking, cfg.Location()),
		Reviews:       handler.NewReviewHandler(review),
		Professionals: handler.NewProfessionalHandler(catalog),
		Support:       handler.NewSupportHandler(support),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.App.Port
	go func() {
		log.Info().Str("addr", addr).Str("timezone", cfg.App.Timezone).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
