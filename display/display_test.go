package display

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-fx-wallet"
	"go-fx-wallet/exchange"
	"go-fx-wallet/ratetable"
)

func TestRender(t *testing.T) {
	table := ratetable.New(log.NewNopLogger())
	require.NoError(t, table.ReplaceRates("EUR", wallet.Rates{"USD": 1.18}))

	holdings := []wallet.Money{
		wallet.NewFiat(100, "EUR"),
		wallet.NewCrypto(0.5, "BTC", "1BoatSLRHtKNngkdXEeobR76b53LETtpyT"),
		wallet.NewFiat(10.5, "USD"),
	}

	lines := Render(context.Background(), exchange.NewService(table), holdings, "USD")

	require.Len(t, lines, 3)
	assert.True(t, lines[0].Available())
	assert.False(t, lines[1].Available())
	assert.True(t, errors.Is(lines[1].Err, wallet.ErrRateNotFound))
	assert.Equal(t, holdings[1], lines[1].Holding)
	assert.True(t, lines[2].Available())

	assert.Equal(t, "USD : 118.00\nBTC : unavailable\nUSD : 10.50\n", Format(lines, 2))
}

func TestRender_NoHoldings(t *testing.T) {
	table := ratetable.New(log.NewNopLogger())

	lines := Render(context.Background(), exchange.NewService(table), nil, "USD")

	assert.Empty(t, lines)
	assert.Equal(t, "", Format(lines, 2))
}

func TestLine_Format(t *testing.T) {
	tests := []struct {
		name      string
		line      Line
		precision int32
		want      string
	}{
		{"rounded", Line{Converted: wallet.NewFiat(1.23456, "GBP")}, 2, "GBP : 1.23"},
		{"padded", Line{Converted: wallet.NewFiat(3, "JPY")}, 0, "JPY : 3"},
		{"more places", Line{Converted: wallet.NewFiat(0.1, "BTC")}, 8, "BTC : 0.10000000"},
		{"unavailable", Line{Holding: wallet.NewFiat(3, "EUR"), Err: wallet.ErrRateNotFound}, 2, "EUR : unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.line.Format(tt.precision))
		})
	}
}

func TestRender_Overflow(t *testing.T) {
	table := ratetable.New(log.NewNopLogger())
	require.NoError(t, table.ReplaceRates("EUR", wallet.Rates{"JPY": 130.5}))

	holdings := []wallet.Money{wallet.NewFiat(1e308, "EUR"), wallet.NewFiat(2, "EUR")}

	lines := Render(context.Background(), exchange.NewService(table), holdings, "JPY")

	require.Len(t, lines, 2)
	assert.ErrorIs(t, lines[0].Err, wallet.ErrOverflow)
	assert.Equal(t, "EUR : unavailable\nJPY : 261.00\n", Format(lines, 2))
}

func TestLine_FormatNotFinite(t *testing.T) {
	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		line := Line{Holding: wallet.NewFiat(1, "EUR"), Converted: wallet.NewFiat(wallet.Amount(v), "JPY")}
		assert.NotPanics(t, func() {
			assert.Equal(t, "EUR : unavailable", line.Format(2))
		})
	}
}
