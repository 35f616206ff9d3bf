package exchange

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"go-fx-wallet"
)

// loggingService decorates an exchange.Service with logging
type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService returns a new instance of a logging Service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Convert(ctx context.Context, money wallet.Money, to wallet.Currency) (converted wallet.Money, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert",
			"amount", money.Value(),
			"from", money.Currency(),
			"to", to,
			"converted_amount", converted.Value(),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, money, to)
}

func (s *loggingService) ConvertInverse(ctx context.Context, money wallet.Money, to wallet.Currency) (converted wallet.Money, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "convert_inverse",
			"amount", money.Value(),
			"from", money.Currency(),
			"to", to,
			"converted_amount", converted.Value(),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.ConvertInverse(ctx, money, to)
}
