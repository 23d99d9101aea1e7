package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/billing"
)

type listerFunc func(ctx context.Context) ([]billing.Gateway, error)

func (f listerFunc) ListGateways(ctx context.Context) ([]billing.Gateway, error) { return f(ctx) }

func testOrder() Order {
	return Order{
		Amount:      decimal.RequireFromString("14.99"),
		Currency:    "EUR",
		Description: "Vidora Pro (monthly)",
		Customer:    models.Customer{ID: "cust-1", Name: "Ann", Email: "ann@example.com"},
		Metadata:    billing.Metadata{"type": "subscription_new", "planId": "plan-pro"},
	}
}

func catalog() []billing.Gateway {
	return []billing.Gateway{
		{ID: "gw-mollie", Provider: billing.ProviderMollie, DisplayName: "iDEAL", SupportedMethods: []string{"ideal"}},
		{ID: "gw-stripe", Provider: billing.ProviderStripe, DisplayName: "Card",
			Fees: billing.FeeStructure{Fixed: decimal.RequireFromString("0.25"), Percentage: decimal.RequireFromString("1.4")}},
		{ID: "gw-paypal", Provider: billing.ProviderPayPal, DisplayName: "PayPal", SupportedCurrencies: []string{"USD"}},
	}
}

func TestSelectorLoadFailureShowsNoMethods(t *testing.T) {
	// The REST client turns {success:false} into an APIError.
	lister := listerFunc(func(context.Context) ([]billing.Gateway, error) {
		return nil, &apiclient.APIError{Endpoint: "payments.gateways", StatusCode: 200, Message: "disabled"}
	})

	s := NewSelector(testOrder())
	assert.Equal(t, StateLoading, s.State())

	err := s.Load(context.Background(), lister)
	require.Error(t, err)
	assert.Equal(t, StateError, s.State())
	assert.Nil(t, s.Form())
	assert.Empty(t, s.Options())

	_, err = s.Select("gw-stripe")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, s.Form())
}

func TestSelectorEmptyCatalogIsError(t *testing.T) {
	s := NewSelector(testOrder())
	err := s.Load(context.Background(), listerFunc(func(context.Context) ([]billing.Gateway, error) {
		return []billing.Gateway{}, nil
	}))
	assert.ErrorIs(t, err, billing.ErrNoGateways)
	assert.Equal(t, StateError, s.State())
}

func TestSelectStripePassesOrderThrough(t *testing.T) {
	order := testOrder()
	s := NewSelector(order)
	require.NoError(t, s.Load(context.Background(), listerFunc(func(context.Context) ([]billing.Gateway, error) {
		return catalog(), nil
	})))
	assert.Equal(t, StateChoosing, s.State())

	form, err := s.Select("gw-stripe")
	require.NoError(t, err)
	assert.Equal(t, StateProviderSelected, s.State())
	assert.Equal(t, billing.ProviderStripe, form.Provider)
	assert.Equal(t, "stripe", form.Provider.String())
	assert.True(t, form.Amount.Equal(order.Amount))
	assert.Equal(t, order.Currency, form.Currency)
	assert.Equal(t, order.Description, form.Description)
	assert.Equal(t, order.Customer, form.Customer)
	assert.Equal(t, order.Metadata, form.Metadata)
	assert.Equal(t, "partials/provider_stripe", form.Partial)
	assert.Equal(t, "0.46", form.Fee.StringFixed(2))
}

func TestSelectorBackDiscardsForm(t *testing.T) {
	s := NewSelector(testOrder())
	require.NoError(t, s.Load(context.Background(), listerFunc(func(context.Context) ([]billing.Gateway, error) {
		return catalog(), nil
	})))

	assert.ErrorIs(t, s.Back(), ErrInvalidState)

	_, err := s.Select("gw-mollie")
	require.NoError(t, err)
	require.NoError(t, s.Back())
	assert.Equal(t, StateChoosing, s.State())
	assert.Nil(t, s.Form())

	form, err := s.Select("gw-paypal")
	require.NoError(t, err)
	assert.Equal(t, billing.ProviderPayPal, form.Provider)
	assert.False(t, form.Available, "paypal gateway only takes USD")
}

func TestSelectUnknownGateway(t *testing.T) {
	s := NewSelector(testOrder())
	require.NoError(t, s.Load(context.Background(), listerFunc(func(context.Context) ([]billing.Gateway, error) {
		return catalog(), nil
	})))
	_, err := s.Select("nope")
	assert.True(t, errors.Is(err, ErrUnknownGateway))
	assert.Equal(t, StateChoosing, s.State())
}

func TestProviderUIIsExhaustive(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range billing.Providers {
		partial, _ := providerUI(billing.Gateway{Provider: p})
		assert.NotEqual(t, "partials/provider_unknown", partial, p.String())
		assert.False(t, seen[partial], "duplicate partial %s", partial)
		seen[partial] = true
	}
}

func TestOrderFor(t *testing.T) {
	plan := models.Plan{ID: "plan-pro", Name: "Pro", Slug: "pro", Price: decimal.RequireFromString("14.99"), Currency: "eur", Period: "monthly"}
	customer := models.Customer{ID: "cust-1", Name: "Ann", Email: "ann@example.com"}

	o := OrderFor(plan, customer, Intent{PlanSlug: "pro", Type: "subscription_renewal", SubscriptionID: "sub-1"})
	assert.Equal(t, "EUR", o.Currency)
	assert.Equal(t, "subscription_renewal", o.Metadata.Type())
	assert.Equal(t, "sub-1", o.Metadata.String("subscriptionId"))
	assert.Equal(t, "cust-1", o.Metadata.String("userId"))
	assert.Contains(t, o.Description, "Renewal")

	o = OrderFor(plan, customer, Intent{PlanSlug: "pro", Type: "bogus"})
	assert.Equal(t, "subscription_new", o.Metadata.Type())
	assert.NotContains(t, o.Metadata, "subscriptionId")

	req := o.PaymentRequest("gw-stripe", true)
	assert.Equal(t, "ann@example.com", req.CustomerEmail)
	assert.True(t, req.IsTest)
	require.NoError(t, req.Validate())
}
