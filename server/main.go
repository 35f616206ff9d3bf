package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go-fx-wallet/config"
	"go-fx-wallet/exchange"
	"go-fx-wallet/http"
	"go-fx-wallet/internal/logging"
	"go-fx-wallet/ratesapi"
	"go-fx-wallet/ratetable"
	"golang.org/x/sync/errgroup"

	nhttp "net/http"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger := logging.New(os.Stderr, "error")
		level.Error(logger).Log("msg", "loading config", "err", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	table := ratetable.New(level.Info(log.With(logger, "component", "rate_table")))
	table.SetHoldings(cfg.DisplayConfig.Holdings...)

	ratesService := ratesapi.NewService(cfg.RatesConfig.Url, cfg.RatesConfig.FetchTimeout)
	ratesService = ratesapi.NewLoggingService(level.Debug(log.With(logger, "component", "rates_rest")), ratesService)
	refresher := ratesapi.NewRefresher(cfg.RatesConfig.Base, ratesService, table, level.Warn(log.With(logger, "component", "rates_refresh")))

	exchangeService := exchange.NewService(table)
	exchangeService = exchange.NewLoggingService(level.Debug(log.With(logger, "component", "exchange")), exchangeService)

	handler := http.NewServer(exchangeService, table, refresher, cfg.DisplayConfig.Currency, cfg.DisplayConfig.Precision)
	server := &nhttp.Server{
		Addr:              cfg.HttpConfig.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		refresher.Run(ctx, cfg.RatesConfig.RefreshInterval)
		return nil
	})
	g.Go(func() error {
		level.Info(logger).Log("msg", "listening", "addr", cfg.HttpConfig.Address, "base", cfg.RatesConfig.Base)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nhttp.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "server stopped")
}
