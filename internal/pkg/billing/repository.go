package billing

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository is the backend surface the billing service depends on. The
// REST client in internal/pkg/apiclient implements it.
type Repository interface {
	ListGateways(ctx context.Context) ([]Gateway, error)
	CreatePayment(ctx context.Context, req CreatePaymentInput) (*CheckoutSession, error)
	LatestPayment(ctx context.Context, customerID string) (*Payment, error)
	CompleteUpgrade(ctx context.Context, paymentID string) error
}

// CreatePaymentInput is the body of POST /api/payments/create.
type CreatePaymentInput struct {
	Amount        decimal.Decimal
	Currency      string
	Description   string
	CustomerEmail string
	CustomerName  string
	GatewayID     string
	IsTest        bool
	Metadata      Metadata
}

// CheckoutSession is what the backend returns for a created payment.
type CheckoutSession struct {
	CheckoutURL string `json:"checkoutUrl"`
	PaymentID   string `json:"paymentId,omitempty"`
}
