package exchange

import (
	"fmt"
	"math"

	"go-fx-wallet"
)

// RateSource looks up the direct rate for a currency pair.
// Implementations must be concurrency-safe when invoked.
type RateSource interface {
	Lookup(from wallet.Currency, to wallet.Currency) (wallet.Rate, bool)
}

// Convert computes money in currency to using the direct rate money.Currency() -> to.
// Rates are never inverted or chained through other currencies. Money already in currency to is
// returned with the same value, without looking up a rate.
func Convert(money wallet.Money, to wallet.Currency, source RateSource) (wallet.Money, error) {
	if money.Currency() == to {
		return result(float64(money.Value()), to, to)
	}

	rate, ok := source.Lookup(money.Currency(), to)
	if !ok {
		return wallet.Money{}, fmt.Errorf("convert [%v -> %v]: %w", money.Currency(), to, wallet.ErrRateNotFound)
	}

	return result(float64(money.Value())*rate.Value, money.Currency(), to)
}

// ConvertInverse computes money in currency to using the stored rate to -> money.Currency() as 1/rate.
func ConvertInverse(money wallet.Money, to wallet.Currency, source RateSource) (wallet.Money, error) {
	if money.Currency() == to {
		return result(float64(money.Value()), to, to)
	}

	rate, ok := source.Lookup(to, money.Currency())
	if !ok {
		return wallet.Money{}, fmt.Errorf("convert inverse [%v -> %v]: %w", money.Currency(), to, wallet.ErrRateNotFound)
	}

	return result(float64(money.Value())/rate.Value, money.Currency(), to)
}

// result rejects values that are not finite
func result(value float64, from wallet.Currency, to wallet.Currency) (wallet.Money, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return wallet.Money{}, fmt.Errorf("convert [%v -> %v]: %w", from, to, wallet.ErrOverflow)
	}
	return wallet.NewFiat(wallet.Amount(value), to), nil
}
