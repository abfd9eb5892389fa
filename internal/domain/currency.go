package domain

import (
	"fmt"
	"strings"
)

// Currency identifies one of the two supported balance currencies.
type Currency string

const (
	// CurrencyBTC is the base currency, denominated in satoshis.
	CurrencyBTC Currency = "BTC"
	// CurrencyUSD is the synthetic currency, denominated in cents and only obtainable through a swap.
	CurrencyUSD Currency = "USD"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{CurrencyBTC, CurrencyUSD}

// ParseCurrency parses a case-insensitive currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unsupported currency %q", ErrValidation, s)
	}
	return c, nil
}

// IsValid reports whether c is a supported currency.
func (c Currency) IsValid() bool {
	return c == CurrencyBTC || c == CurrencyUSD
}

// Counterpart returns the other supported currency.
func (c Currency) Counterpart() Currency {
	if c == CurrencyBTC {
		return CurrencyUSD
	}
	return CurrencyBTC
}

// Precision is the number of decimal places of the currency's smallest unit
// as stored in the ledger. BTC is stored in satoshis, so it has none.
func (c Currency) Precision() int32 {
	if c == CurrencyUSD {
		return 2
	}
	return 0
}

func (c Currency) String() string {
	return string(c)
}
