package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Fee returns amount * percent / 100 rounded to the currency's smallest unit.
func Fee(amount, percent decimal.Decimal, currency Currency) decimal.Decimal {
	if amount.Sign() <= 0 || percent.Sign() <= 0 {
		return decimal.Zero
	}
	return amount.Mul(percent).Div(hundred).Round(currency.Precision())
}
