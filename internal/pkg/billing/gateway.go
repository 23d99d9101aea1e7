package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FeeStructure is a fixed amount plus a percentage of the payment amount.
type FeeStructure struct {
	Fixed      decimal.Decimal `json:"fixed"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Gateway is one enabled payment method from the backend catalog.
type Gateway struct {
	ID                  string              `json:"id"`
	Provider            Provider            `json:"provider"`
	DisplayName         string              `json:"displayName"`
	Description         string              `json:"description"`
	SupportedCurrencies []string            `json:"supportedCurrencies"`
	SupportedMethods    []string            `json:"supportedMethods"`
	Fees                FeeStructure        `json:"fees"`
	MinAmount           decimal.NullDecimal `json:"minAmount"`
	MaxAmount           decimal.NullDecimal `json:"maxAmount"`
	IsRecommended       bool                `json:"isRecommended"`
}

var hundred = decimal.NewFromInt(100)

// FeeFor returns the gateway fee for amount, rounded to cents.
func (g Gateway) FeeFor(amount decimal.Decimal) decimal.Decimal {
	pct := amount.Mul(g.Fees.Percentage).Div(hundred)
	return g.Fees.Fixed.Add(pct).Round(2)
}

// SupportsCurrency is true when the gateway lists no currencies or lists
// currency.
func (g Gateway) SupportsCurrency(currency string) bool {
	if len(g.SupportedCurrencies) == 0 {
		return true
	}
	for _, c := range g.SupportedCurrencies {
		if strings.EqualFold(c, currency) {
			return true
		}
	}
	return false
}

// WithinLimits checks amount against the optional min/max limits.
func (g Gateway) WithinLimits(amount decimal.Decimal) bool {
	if g.MinAmount.Valid && amount.LessThan(g.MinAmount.Decimal) {
		return false
	}
	if g.MaxAmount.Valid && amount.GreaterThan(g.MaxAmount.Decimal) {
		return false
	}
	return true
}

// Accepts combines the currency and limit checks.
func (g Gateway) Accepts(amount decimal.Decimal, currency string) bool {
	return g.SupportsCurrency(currency) && g.WithinLimits(amount)
}
