package wallet

import (
	"errors"
)

// ErrMalformedPayload a rate payload that cannot be interpreted as a base currency and a rate map
var ErrMalformedPayload = errors.New("malformed payload")

// ErrRateNotFound no direct rate is known for a currency pair
var ErrRateNotFound = errors.New("rate not found")

// ErrOverflow a conversion result too large to represent
var ErrOverflow = errors.New("conversion overflow")

// Currency a currency code
type Currency string

// Amount a monetary amount... which should be a float...
type Amount float64

// Rates maps a target currency to the factor converting one unit of the base currency into it
type Rates map[Currency]float64

// Rate an exchange rate from one currency to another: to = from * Value
type Rate struct {
	From  Currency
	To    Currency
	Value float64
}

// Kind tags the variant of Money
type Kind int

const (
	Fiat Kind = iota
	Crypto
)

func (k Kind) String() string {
	switch k {
	case Fiat:
		return "fiat"
	case Crypto:
		return "crypto"
	default:
		return "unknown"
	}
}

// Money an amount in a currency. Crypto money also carries the address of the wallet holding it.
type Money struct {
	value    Amount
	currency Currency
	kind     Kind
	address  string
}

// NewFiat constructs fiat Money
func NewFiat(value Amount, currency Currency) Money {
	return Money{value: value, currency: currency, kind: Fiat}
}

// NewCrypto constructs crypto Money held at the given wallet address
func NewCrypto(value Amount, currency Currency, address string) Money {
	return Money{value: value, currency: currency, kind: Crypto, address: address}
}

func (m Money) Value() Amount {
	return m.value
}

func (m Money) Currency() Currency {
	return m.currency
}

func (m Money) Kind() Kind {
	return m.kind
}

// WalletAddress is empty for fiat money
func (m Money) WalletAddress() string {
	return m.address
}
