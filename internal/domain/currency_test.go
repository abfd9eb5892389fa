package domain

import (
	"errors"
	"testing"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Currency
		wantErr bool
	}{
		{in: "BTC", want: CurrencyBTC},
		{in: "usd", want: CurrencyUSD},
		{in: " btc ", want: CurrencyBTC},
		{in: "EUR", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCurrencyCounterpart(t *testing.T) {
	if CurrencyBTC.Counterpart() != CurrencyUSD {
		t.Errorf("BTC counterpart should be USD")
	}
	if CurrencyUSD.Counterpart() != CurrencyBTC {
		t.Errorf("USD counterpart should be BTC")
	}
}

func TestBalanceKeyLess(t *testing.T) {
	a := BalanceKey{Username: "alice", Currency: CurrencyBTC}
	b := BalanceKey{Username: "alice", Currency: CurrencyUSD}
	c := BalanceKey{Username: "bob", Currency: CurrencyBTC}

	if !a.Less(b) || b.Less(a) {
		t.Errorf("expected %s < %s", a, b)
	}
	if !b.Less(c) {
		t.Errorf("expected %s < %s", b, c)
	}
}
