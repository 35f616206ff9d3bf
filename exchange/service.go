package exchange

import (
	"context"

	"go-fx-wallet"
)

// Service interface for converting money from one currency to another
type Service interface {
	Convert(ctx context.Context, money wallet.Money, to wallet.Currency) (wallet.Money, error)
	ConvertInverse(ctx context.Context, money wallet.Money, to wallet.Currency) (wallet.Money, error)
}

// service converts with whatever rates source currently holds
type service struct {
	// source to look up exchange rates
	source RateSource
}

// NewService constructs a valid Service
func NewService(source RateSource) Service {
	return &service{
		source: source,
	}
}

func (s *service) Convert(_ context.Context, money wallet.Money, to wallet.Currency) (wallet.Money, error) {
	return Convert(money, to, s.source)
}

func (s *service) ConvertInverse(_ context.Context, money wallet.Money, to wallet.Currency) (wallet.Money, error) {
	return ConvertInverse(money, to, s.source)
}
