package ratesapi

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"go-fx-wallet"
)

// loggingService decorates a ratesapi.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService return a new logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Latest(ctx context.Context, base wallet.Currency) (payload []byte, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "latest",
			"base", base,
			"bytes", len(payload),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Latest(ctx, base)
}
