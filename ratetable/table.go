package ratetable

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-kit/log"
	"go-fx-wallet"
)

// pair key of the rate index
type pair struct {
	from wallet.Currency
	to   wallet.Currency
}

// Table holds the latest known rates, all relative to one base currency, and the holdings to display.
// Table is concurrency safe: rates are only ever swapped as a whole, so readers never see a partial update.
type Table struct {
	// lock synchronizes access to rates and holdings
	lock sync.RWMutex

	// rates indexed by currency pair, at most one per pair
	rates map[pair]wallet.Rate

	base      wallet.Currency
	updatedAt time.Time

	holdings []wallet.Money

	logger log.Logger
}

// New constructs an empty Table
func New(logger log.Logger) *Table {
	return &Table{
		rates:  map[pair]wallet.Rate{},
		logger: logger,
	}
}

// ReplaceRates discards all known rates and replaces them with one rate per entry of rates, each from base.
// On error the previous rates are retained.
func (t *Table) ReplaceRates(base wallet.Currency, rates wallet.Rates) error {
	if base == "" {
		return fmt.Errorf("replace rates: missing base currency: %w", wallet.ErrMalformedPayload)
	}
	if rates == nil {
		return fmt.Errorf("replace rates [%v]: missing rates: %w", base, wallet.ErrMalformedPayload)
	}

	next := make(map[pair]wallet.Rate, len(rates))
	for to, value := range rates {
		if to == "" {
			return fmt.Errorf("replace rates [%v]: empty currency code: %w", base, wallet.ErrMalformedPayload)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			return fmt.Errorf("replace rates [%v]: bad rate value for %v (%v): %w", base, to, value, wallet.ErrMalformedPayload)
		}
		next[pair{base, to}] = wallet.Rate{From: base, To: to, Value: value}
	}

	t.lock.Lock()
	t.rates = next
	t.base = base
	t.updatedAt = time.Now()
	t.lock.Unlock()

	t.logger.Log("msg", "replaced rates", "base", base, "count", len(next))
	return nil
}

// Update decodes a rate payload and replaces the known rates with it
func (t *Table) Update(payload []byte) error {
	base, rates, err := Decode(payload)
	if err != nil {
		return err
	}
	return t.ReplaceRates(base, rates)
}

// Decode interprets payload as {"base": "<code>", "rates": {"<code>": <number>, ...}}
func Decode(payload []byte) (wallet.Currency, wallet.Rates, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(payload, &root); err != nil || root == nil {
		return "", nil, fmt.Errorf("decoding payload: not an object: %w", wallet.ErrMalformedPayload)
	}

	rawBase, ok := root["base"]
	if !ok {
		return "", nil, fmt.Errorf("decoding payload: missing base: %w", wallet.ErrMalformedPayload)
	}
	var base string
	if err := json.Unmarshal(rawBase, &base); err != nil || isNull(rawBase) {
		return "", nil, fmt.Errorf("decoding payload: base is not a string: %w", wallet.ErrMalformedPayload)
	}

	rawRates, ok := root["rates"]
	if !ok || isNull(rawRates) {
		return "", nil, fmt.Errorf("decoding payload [%v]: missing rates: %w", base, wallet.ErrMalformedPayload)
	}
	var rates wallet.Rates
	if err := json.Unmarshal(rawRates, &rates); err != nil {
		return "", nil, fmt.Errorf("decoding payload [%v]: rates are not a map of numbers: %w", base, wallet.ErrMalformedPayload)
	}

	return wallet.Currency(base), rates, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// CurrentRates returns a snapshot of the known rates ordered by currency pair
func (t *Table) CurrentRates() []wallet.Rate {
	t.lock.RLock()
	snapshot := make([]wallet.Rate, 0, len(t.rates))
	for _, rate := range t.rates {
		snapshot = append(snapshot, rate)
	}
	t.lock.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool {
		if snapshot[i].From != snapshot[j].From {
			return snapshot[i].From < snapshot[j].From
		}
		return snapshot[i].To < snapshot[j].To
	})
	return snapshot
}

// Lookup finds the rate for exactly the pair from -> to
func (t *Table) Lookup(from wallet.Currency, to wallet.Currency) (wallet.Rate, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	rate, ok := t.rates[pair{from, to}]
	return rate, ok
}

// Base of the current rates, empty before the first successful replace
func (t *Table) Base() wallet.Currency {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.base
}

// UpdatedAt time of the last successful replace
func (t *Table) UpdatedAt() time.Time {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.updatedAt
}

func (t *Table) Holdings() []wallet.Money {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return append([]wallet.Money(nil), t.holdings...)
}

func (t *Table) SetHoldings(holdings ...wallet.Money) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.holdings = append([]wallet.Money(nil), holdings...)
}
