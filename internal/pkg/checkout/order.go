package checkout

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/billing"
)

// Intent says what the customer is paying for. It is kept in the web
// session between plan choice and payment.
type Intent struct {
	PlanSlug       string `json:"planSlug"`
	Type           string `json:"type"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
}

// Order is the payment context handed unchanged to the provider form.
type Order struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	Customer    models.Customer
	Metadata    billing.Metadata
}

// OrderFor builds the order for a plan purchase.
func OrderFor(plan models.Plan, customer models.Customer, intent Intent) Order {
	paymentType := billing.NormalizePaymentType(intent.Type)

	meta := billing.Metadata{
		"type":     paymentType,
		"userId":   customer.ID,
		"planId":   plan.ID,
		"planSlug": plan.Slug,
	}
	if intent.SubscriptionID != "" {
		meta["subscriptionId"] = intent.SubscriptionID
	}

	return Order{
		Amount:      plan.Price,
		Currency:    strings.ToUpper(plan.Currency),
		Description: describe(plan, paymentType),
		Customer:    customer,
		Metadata:    meta,
	}
}

func describe(plan models.Plan, paymentType string) string {
	switch paymentType {
	case billing.PaymentTypeSubscriptionUpgrade:
		return "Upgrade to Vidora " + plan.Name + " (" + plan.Period + ")"
	case billing.PaymentTypeSubscriptionRenewal:
		return "Renewal of Vidora " + plan.Name + " (" + plan.Period + ")"
	default:
		return "Vidora " + plan.Name + " (" + plan.Period + ")"
	}
}

// PaymentRequest turns the order into the billing request for gatewayID.
func (o Order) PaymentRequest(gatewayID string, isTest bool) billing.PaymentRequest {
	return billing.PaymentRequest{
		Amount:        o.Amount,
		Currency:      o.Currency,
		Description:   o.Description,
		CustomerEmail: o.Customer.Email,
		CustomerName:  o.Customer.Name,
		GatewayID:     gatewayID,
		IsTest:        isTest,
		Metadata:      o.Metadata,
	}
}
