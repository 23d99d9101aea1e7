package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidora/vidora-web/internal/pkg/billing"
)

// Compile-time check that the client can back the billing service.
var _ billing.Repository = (*Client)(nil)

// ListGateways calls GET /api/payments/gateways.
func (c *Client) ListGateways(ctx context.Context) ([]billing.Gateway, error) {
	const endpoint = "payments.gateways"
	env, err := c.do(ctx, request{endpoint: endpoint, method: http.MethodGet, path: "/api/payments/gateways"})
	if err != nil {
		return nil, err
	}

	raw := env.Gateways
	if len(raw) == 0 {
		raw = env.Data
	}
	var gateways []billing.Gateway
	if err := decodeField(endpoint, raw, &gateways); err != nil {
		return nil, err
	}
	return gateways, nil
}

// LatestPayment calls GET /api/payments/latest for the given customer.
func (c *Client) LatestPayment(ctx context.Context, customerID string) (*billing.Payment, error) {
	const endpoint = "payments.latest"
	env, err := c.do(ctx, request{
		endpoint:   endpoint,
		method:     http.MethodGet,
		path:       "/api/payments/latest",
		customerID: customerID,
	})
	if err != nil {
		return nil, err
	}

	raw := env.Payment
	if len(raw) == 0 {
		raw = env.Data
	}
	var p billing.Payment
	if err := decodeField(endpoint, raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type createPaymentBody struct {
	Amount        json.Number      `json:"amount"`
	Currency      string           `json:"currency"`
	Description   string           `json:"description"`
	CustomerEmail string           `json:"customerEmail"`
	CustomerName  string           `json:"customerName"`
	GatewayID     string           `json:"gatewayId"`
	IsTest        bool             `json:"isTest,omitempty"`
	Metadata      billing.Metadata `json:"metadata,omitempty"`
}

// CreatePayment calls POST /api/payments/create.
func (c *Client) CreatePayment(ctx context.Context, in billing.CreatePaymentInput) (*billing.CheckoutSession, error) {
	const endpoint = "payments.create"
	env, err := c.do(ctx, request{
		endpoint: endpoint,
		method:   http.MethodPost,
		path:     "/api/payments/create",
		body: createPaymentBody{
			Amount:        json.Number(in.Amount.StringFixed(2)),
			Currency:      in.Currency,
			Description:   in.Description,
			CustomerEmail: in.CustomerEmail,
			CustomerName:  in.CustomerName,
			GatewayID:     in.GatewayID,
			IsTest:        in.IsTest,
			Metadata:      in.Metadata,
		},
		customerID: in.Metadata.String("userId"),
	})
	if err != nil {
		return nil, err
	}

	var out billing.CheckoutSession
	if err := decodeField(endpoint, env.Data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteUpgrade calls POST /api/subscriptions/upgrade/complete.
func (c *Client) CompleteUpgrade(ctx context.Context, paymentID string) error {
	_, err := c.do(ctx, request{
		endpoint: "subscriptions.upgrade_complete",
		method:   http.MethodPost,
		path:     "/api/subscriptions/upgrade/complete",
		body:     map[string]string{"paymentId": paymentID},
	})
	return err
}
