package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go-fx-wallet/config"
	"go-fx-wallet/display"
	"go-fx-wallet/exchange"
	"go-fx-wallet/internal/logging"
	"go-fx-wallet/ratesapi"
	"go-fx-wallet/ratetable"
)

// show fetches the latest rates once and prints the configured holdings in the display currency
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		logger := logging.New(os.Stderr, "error")
		level.Error(logger).Log("msg", "loading config", "err", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx := context.Background()
	if err := run(ctx, cfg, ratesapi.NewService(cfg.RatesConfig.Url, cfg.RatesConfig.FetchTimeout), os.Stdout, logger); err != nil {
		level.Error(logger).Log("msg", "showing holdings", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, ratesService ratesapi.Service, out io.Writer, logger log.Logger) error {
	table := ratetable.New(level.Debug(log.With(logger, "component", "rate_table")))
	table.SetHoldings(cfg.DisplayConfig.Holdings...)

	ratesService = ratesapi.NewLoggingService(level.Debug(log.With(logger, "component", "rates_rest")), ratesService)
	refresher := ratesapi.NewRefresher(cfg.RatesConfig.Base, ratesService, table, log.With(logger, "component", "rates_refresh"))
	if err := refresher.Refresh(ctx); err != nil {
		return err
	}

	converter := exchange.NewLoggingService(level.Debug(log.With(logger, "component", "exchange")), exchange.NewService(table))
	lines := display.Render(ctx, converter, table.Holdings(), cfg.DisplayConfig.Currency)
	for _, line := range lines {
		if !line.Available() {
			level.Warn(logger).Log("msg", "holding unavailable", "currency", line.Holding.Currency(), "err", line.Err)
		}
	}

	_, err := fmt.Fprint(out, display.Format(lines, cfg.DisplayConfig.Precision))
	return err
}
