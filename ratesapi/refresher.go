package ratesapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"go-fx-wallet"
)

// ErrSuperseded a refresh was overtaken by a newer one before it could update the rates
var ErrSuperseded = errors.New("refresh superseded")

// Updater replaces known rates with a decoded payload, e.g. a *ratetable.Table
type Updater interface {
	Update(payload []byte) error
}

// Refresher fetches the latest rates for one base currency and hands them to an Updater.
// The Refresher is concurrency safe: starting a refresh cancels the one in flight, and only the
// newest refresh may update the rates.
type Refresher struct {
	// next the service fetching payloads
	next Service

	// updater receives fetched payloads
	updater Updater

	base wallet.Currency

	// lock synchronizes access to seq and cancel, and orders updates
	lock sync.Mutex

	// seq identifies the newest refresh
	seq uint64

	// cancel the refresh in flight, nil when idle
	cancel context.CancelFunc

	logger log.Logger
}

// NewRefresher returns a new Refresher
func NewRefresher(base wallet.Currency, s Service, updater Updater, logger log.Logger) *Refresher {
	return &Refresher{
		next:    s,
		updater: updater,
		base:    base,
		logger:  logger,
	}
}

// Refresh fetches the latest rates and updates them. On any error the rates are left as they were.
func (r *Refresher) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.lock.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.seq++
	seq := r.seq
	r.cancel = cancel
	r.lock.Unlock()

	payload, err := r.next.Latest(ctx, r.base)

	r.lock.Lock()
	defer r.lock.Unlock()
	if r.seq != seq {
		return fmt.Errorf("refresh [%v]: %w", r.base, ErrSuperseded)
	}
	r.cancel = nil

	if err != nil {
		return fmt.Errorf("refresh [%v]: %w", r.base, err)
	}
	if err := r.updater.Update(payload); err != nil {
		return fmt.Errorf("refresh [%v]: %w", r.base, err)
	}
	return nil
}

// Run refreshes immediately and then every updateFrequency until ctx is done.
// This is expected to be called from a go-routine.
func (r *Refresher) Run(ctx context.Context, updateFrequency time.Duration) {
	r.refreshAndLog(ctx)

	ticker := time.NewTicker(updateFrequency)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.refreshAndLog(ctx)
		case <-ctx.Done():
			r.logger.Log("msg", "shutting down periodic refresh", "base", r.base)
			return
		}
	}
}

func (r *Refresher) refreshAndLog(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		// Don't return, just log and hope this is a transient error
		r.logger.Log("msg", "periodic refresh failed", "base", r.base, "err", err)
	}
}
