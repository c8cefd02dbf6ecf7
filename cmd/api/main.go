package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Shyesilbas/secondHand-sub003/internal/app"
	"github.com/Shyesilbas/secondHand-sub003/internal/clock"
	"github.com/Shyesilbas/secondHand-sub003/internal/config"
	"github.com/Shyesilbas/secondHand-sub003/internal/events"
	"github.com/Shyesilbas/secondHand-sub003/internal/storage/postgres"
	transporthttp "github.com/Shyesilbas/secondHand-sub003/internal/transport/http"
	"github.com/Shyesilbas/secondHand-sub003/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("kafka publisher enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer func() { _ = publisher.Close() }()

	clk := clock.NewSystem()

	cartRepo := postgres.NewCartRepository(pool)
	cartSvc := app.NewCartService(cartRepo, clk,
		app.WithReservationTTL(cfg.ReservationTTL),
		app.WithNearReservedThreshold(cfg.NearReservedThreshold),
	)
	pricingSvc := app.NewPricingService(postgres.NewPricingRepository(pool), clk)
	checkoutSvc := app.NewCheckoutService(postgres.NewCheckoutRepository(pool), pricingSvc, publisher, clk, logger)
	offerSvc := app.NewOfferService(postgres.NewOfferRepository(pool), clk)

	sweeper := app.NewSweeper(cartRepo, clk, cfg.SweepInterval, logger)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweeper.Run(sweepCtx)

	handler := transporthttp.NewRouter(transporthttp.Services{
		Cart:     cartSvc,
		Pricing:  pricingSvc,
		Checkout: checkoutSvc,
		Offers:   offerSvc,
	}, cfg.CORSOrigins, logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", zap.String("port", cfg.Port))

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
