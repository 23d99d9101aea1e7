package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentGatewayConfig is the admin view of a gateway, credentials included.
// The public catalog shape lives in internal/pkg/billing.
type PaymentGatewayConfig struct {
	ID                  string              `json:"id,omitempty"`
	Provider            string              `json:"provider" validate:"required,oneof=mollie stripe paypal"`
	DisplayName         string              `json:"displayName" validate:"required,min=2,max=100"`
	Description         string              `json:"description" validate:"max=500"`
	SupportedCurrencies []string            `json:"supportedCurrencies" validate:"dive,len=3"`
	SupportedMethods    []string            `json:"supportedMethods"`
	FixedFee            decimal.Decimal     `json:"fixedFee"`
	PercentageFee       decimal.Decimal     `json:"percentageFee"`
	MinAmount           decimal.NullDecimal `json:"minAmount"`
	MaxAmount           decimal.NullDecimal `json:"maxAmount"`
	APIKey              string              `json:"apiKey,omitempty" validate:"max=255"`
	SecretKey           string              `json:"secretKey,omitempty" validate:"max=255"`
	WebhookSecret       string              `json:"webhookSecret,omitempty" validate:"max=255"`
	IsTestMode          bool                `json:"isTestMode"`
	IsRecommended       bool                `json:"isRecommended"`
	IsActive            bool                `json:"isActive"`
}

func (g PaymentGatewayConfig) GetID() string { return g.ID }

func (g PaymentGatewayConfig) Label() string {
	if g.Provider == "" {
		return g.DisplayName
	}
	return g.DisplayName + " (" + strings.ToUpper(g.Provider[:1]) + g.Provider[1:] + ")"
}

func (g PaymentGatewayConfig) Validate() error {
	if err := validate.Struct(g); err != nil {
		return err
	}
	if g.FixedFee.IsNegative() || g.PercentageFee.IsNegative() {
		return errNegativeFee
	}
	if g.MinAmount.Valid && g.MaxAmount.Valid && g.MinAmount.Decimal.GreaterThan(g.MaxAmount.Decimal) {
		return errLimitRange
	}
	return nil
}

func (g PaymentGatewayConfig) Active() bool { return g.IsActive }
