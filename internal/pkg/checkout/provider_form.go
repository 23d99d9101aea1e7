package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/billing"
)

// Field is one provider specific input.
type Field struct {
	Name     string
	Label    string
	Type     string
	Options  []string
	Required bool
}

// ProviderForm is the mounted provider step. The order values are passed
// through untouched.
type ProviderForm struct {
	Provider    billing.Provider
	Gateway     billing.Gateway
	Amount      decimal.Decimal
	Currency    string
	Description string
	Customer    models.Customer
	Metadata    billing.Metadata
	Fee         decimal.Decimal
	Available   bool

	// Partial is the template rendered for the provider.
	Partial string
	Fields  []Field
}

func newProviderForm(g billing.Gateway, o Order) ProviderForm {
	form := ProviderForm{
		Provider:    g.Provider,
		Gateway:     g,
		Amount:      o.Amount,
		Currency:    o.Currency,
		Description: o.Description,
		Customer:    o.Customer,
		Metadata:    o.Metadata,
		Fee:         g.FeeFor(o.Amount),
		Available:   g.Accepts(o.Amount, o.Currency),
	}
	form.Partial, form.Fields = providerUI(g)
	return form
}

// providerUI is the one place that branches on the provider.
func providerUI(g billing.Gateway) (string, []Field) {
	switch g.Provider {
	case billing.ProviderMollie:
		methods := g.SupportedMethods
		if len(methods) == 0 {
			methods = []string{"ideal", "creditcard", "bancontact"}
		}
		return "partials/provider_mollie", []Field{
			{Name: "method", Label: "Payment method", Type: "select", Options: methods, Required: true},
		}
	case billing.ProviderStripe:
		return "partials/provider_stripe", []Field{
			{Name: "save_card", Label: "Remember this card for renewals", Type: "checkbox"},
		}
	case billing.ProviderPayPal:
		return "partials/provider_paypal", nil
	case billing.ProviderUnknown:
		return "partials/provider_unknown", nil
	default:
		return "partials/provider_unknown", nil
	}
}
