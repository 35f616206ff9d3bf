package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-fx-wallet"
)

// DefaultEnvFile is loaded when FXWALLET_ENV_FILE is not set
const DefaultEnvFile = "config.env"

type Config struct {
	RatesConfig   ratesConfig
	DisplayConfig displayConfig
	HttpConfig    httpConfig
	LogLevel      string
}

type ratesConfig struct {
	Url             string
	Base            wallet.Currency
	RefreshInterval time.Duration
	FetchTimeout    time.Duration
}

type displayConfig struct {
	Currency  wallet.Currency
	Precision int32
	Holdings  []wallet.Money
}

type httpConfig struct {
	Address string
}

// NewConfig loads the env file, if present, and reads the configuration from the environment.
// Variables already set in the environment take precedence over the env file.
func NewConfig() (*Config, error) {
	file := getenv("FXWALLET_ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %v: %w", file, err)
	}

	refresh, err := time.ParseDuration(getenv("REFRESH_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("REFRESH_INTERVAL: %w", err)
	}
	if refresh <= 0 {
		return nil, fmt.Errorf("REFRESH_INTERVAL: must be positive, got %v", refresh)
	}

	timeout, err := time.ParseDuration(getenv("FETCH_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("FETCH_TIMEOUT: %w", err)
	}

	precision, err := strconv.ParseInt(getenv("DISPLAY_PRECISION", "2"), 10, 32)
	if err != nil || precision < 0 {
		return nil, fmt.Errorf("DISPLAY_PRECISION: not a non-negative integer: %q", os.Getenv("DISPLAY_PRECISION"))
	}

	holdings, err := ParseHoldings(os.Getenv("HOLDINGS"))
	if err != nil {
		return nil, fmt.Errorf("HOLDINGS: %w", err)
	}

	base := wallet.Currency(strings.ToUpper(getenv("BASE_CURRENCY", "EUR")))

	config := Config{
		RatesConfig: ratesConfig{
			Url:             os.Getenv("RATES_URL"),
			Base:            base,
			RefreshInterval: refresh,
			FetchTimeout:    timeout,
		},
		DisplayConfig: displayConfig{
			Currency:  wallet.Currency(strings.ToUpper(getenv("DISPLAY_CURRENCY", string(base)))),
			Precision: int32(precision),
			Holdings:  holdings,
		},
		HttpConfig: httpConfig{
			Address: getenv("HTTP_ADDR", ":8080"),
		},
		LogLevel: getenv("LOG_LEVEL", "info"),
	}
	return &config, nil
}

// ParseHoldings parses a comma separated list of CURRENCY:value entries.
// A crypto holding names its wallet address after an @, e.g. "EUR:100,BTC:0.5@1BoatSLRHtKNngkdXEeobR76b53LETtpyT".
func ParseHoldings(s string) ([]wallet.Money, error) {
	var holdings []wallet.Money
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		currency, rest, ok := strings.Cut(entry, ":")
		currency = strings.ToUpper(strings.TrimSpace(currency))
		if !ok || currency == "" {
			return nil, fmt.Errorf("bad holding %q: expected CURRENCY:value", entry)
		}

		value, address, crypto := strings.Cut(rest, "@")
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("bad holding %q: %w", entry, err)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) || f < 0 {
			return nil, fmt.Errorf("bad holding %q: amount must be finite and non-negative", entry)
		}

		if crypto {
			address = strings.TrimSpace(address)
			if address == "" {
				return nil, fmt.Errorf("bad holding %q: empty wallet address", entry)
			}
			holdings = append(holdings, wallet.NewCrypto(wallet.Amount(f), wallet.Currency(currency), address))
			continue
		}
		holdings = append(holdings, wallet.NewFiat(wallet.Amount(f), wallet.Currency(currency)))
	}
	return holdings, nil
}

func getenv(key string, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
