package billing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoGateways means the catalog could not offer a single payment method.
	ErrNoGateways = errors.New("no payment methods available")
	// ErrInvalidCheckoutURL means the backend answered without a usable redirect.
	ErrInvalidCheckoutURL = errors.New("backend returned an invalid checkout url")
)

var validate = validator.New()

// PaymentRequest is what the checkout form submits.
type PaymentRequest struct {
	Amount        decimal.Decimal `validate:"-"`
	Currency      string          `validate:"required,len=3,alpha"`
	Description   string          `validate:"required,max=255"`
	CustomerEmail string          `validate:"required,email"`
	CustomerName  string          `validate:"required,max=120"`
	GatewayID     string          `validate:"required,max=64"`
	IsTest        bool            `validate:"-"`
	Metadata      Metadata        `validate:"-"`
}

// Validate checks the struct tags and the amount.
func (r PaymentRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return errors.New("amount must be greater than zero")
	}
	return nil
}

// Service provides provider-neutral payment operations on top of the backend.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListGateways returns the backend catalog in backend order. Gateways of
// providers this app cannot render are dropped; an empty result is
// ErrNoGateways.
func (s *Service) ListGateways(ctx context.Context) ([]Gateway, error) {
	gateways, err := s.repo.ListGateways(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gateways: %w", err)
	}

	out := make([]Gateway, 0, len(gateways))
	for _, g := range gateways {
		if g.Provider == ProviderUnknown {
			log.Warnf("[Billing] Skipping gateway %s with unsupported provider", g.ID)
			continue
		}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil, ErrNoGateways
	}
	return out, nil
}

// CreatePayment validates the request and asks the backend for a checkout.
func (s *Service) CreatePayment(ctx context.Context, req PaymentRequest) (*CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	checkout, err := s.repo.CreatePayment(ctx, CreatePaymentInput{
		Amount:        req.Amount.Round(2),
		Currency:      strings.ToUpper(req.Currency),
		Description:   strings.TrimSpace(req.Description),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		GatewayID:     req.GatewayID,
		IsTest:        req.IsTest,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	u, err := url.Parse(strings.TrimSpace(checkout.CheckoutURL))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, ErrInvalidCheckoutURL
	}
	checkout.CheckoutURL = u.String()
	return checkout, nil
}

// LatestPayment reads the most recent payment of a customer.
func (s *Service) LatestPayment(ctx context.Context, customerID string) (*Payment, error) {
	return s.repo.LatestPayment(ctx, customerID)
}

// CompleteUpgrade tells the backend to apply a paid upgrade or renewal.
// The backend treats repeated calls for the same payment as a no-op.
func (s *Service) CompleteUpgrade(ctx context.Context, paymentID string) error {
	if strings.TrimSpace(paymentID) == "" {
		return errors.New("payment id is required")
	}
	return s.repo.CompleteUpgrade(ctx, paymentID)
}
