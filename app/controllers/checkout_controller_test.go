package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/billing"
	"github.com/vidora/vidora-web/internal/pkg/checkout"
	"github.com/vidora/vidora-web/internal/pkg/paysession"
)

type fakePlans struct {
	plans []models.Plan
	err   error
}

func (f fakePlans) ListPlans(context.Context) ([]models.Plan, error) {
	return f.plans, f.err
}

type fakeGateways struct {
	gateways []billing.Gateway
	err      error
}

func (f fakeGateways) ListGateways(context.Context) ([]billing.Gateway, error) {
	return f.gateways, f.err
}

type fakePayments struct {
	requests []billing.PaymentRequest
	session  *billing.CheckoutSession
	err      error
}

func (f *fakePayments) CreatePayment(_ context.Context, req billing.PaymentRequest) (*billing.CheckoutSession, error) {
	f.requests = append(f.requests, req)
	return f.session, f.err
}

var testPlans = []models.Plan{
	{ID: "plan_basic", Name: "Basic", Slug: "basic", Price: decimal.RequireFromString("4.99"), Currency: "EUR", Period: "monthly", IsActive: true, SortOrder: 1},
	{ID: "plan_premium", Name: "Premium", Slug: "premium", Price: decimal.RequireFromString("12.99"), Currency: "EUR", Period: "monthly", IsActive: true, SortOrder: 2},
}

var testGateways = []billing.Gateway{
	{ID: "gw_mollie", Provider: billing.ProviderMollie, DisplayName: "Mollie", SupportedCurrencies: []string{"EUR"}, SupportedMethods: []string{"ideal", "creditcard"}},
	{ID: "gw_stripe", Provider: billing.ProviderStripe, DisplayName: "Stripe"},
	{ID: "gw_paypal", Provider: billing.ProviderPayPal, DisplayName: "PayPal", MaxAmount: decimal.NewNullDecimal(decimal.NewFromInt(5))},
}

func newCheckoutApp(t *testing.T, payments *fakePayments, store paysession.Store, mon *fakeMonitor) *fiber.App {
	t.Helper()
	app := newTestApp(t)
	cc := NewCheckoutController(fakePlans{plans: testPlans}, fakeGateways{gateways: testGateways}, payments, store, mon, true)
	app.Post("/checkout/pay", asCustomer("cus_1"), cc.HandleCheckoutPay)
	return app
}

func TestCheckoutPayInitiatesPaymentSession(t *testing.T) {
	payments := &fakePayments{session: &billing.CheckoutSession{
		CheckoutURL: "https://www.mollie.com/checkout/select-method/tr_1",
		PaymentID:   "tr_1",
	}}
	store := paysession.NewMemoryStore()
	mon := newFakeMonitor()
	app := newCheckoutApp(t, payments, store, mon)

	form := url.Values{"gateway_id": {"gw_mollie"}, "method": {"ideal"}}
	req := withSession(formRequest(http.MethodPost, "/checkout/pay?plan=premium", form), "sid-pay")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "https://www.mollie.com/checkout/select-method/tr_1", resp.Header.Get(fiber.HeaderLocation))

	require.Len(t, payments.requests, 1)
	sent := payments.requests[0]
	assert.Equal(t, "gw_mollie", sent.GatewayID)
	assert.True(t, sent.Amount.Equal(decimal.RequireFromString("12.99")))
	assert.Equal(t, "EUR", sent.Currency)
	assert.True(t, sent.IsTest)
	assert.Equal(t, "ideal", sent.Metadata.String("mollie_method"))
	assert.Equal(t, billing.PaymentTypeSubscriptionNew, sent.Metadata.Type())
	assert.Equal(t, "cus_1", sent.Metadata.String("userId"))

	raw := store.Raw("sid-pay")
	assert.Equal(t, "true", raw[paysession.KeyInitiated])
	assert.Equal(t, "tr_1", raw[paysession.KeyPaymentID])
	assert.Equal(t, "mollie", raw[paysession.KeyProvider])
	assert.Equal(t, "/checkout?plan=premium", raw[paysession.KeyOriginURL])

	assert.Equal(t, []string{"sid-pay"}, mon.forgotten)
}

func TestCheckoutPayRetryReplacesFailedSession(t *testing.T) {
	store := paysession.NewMemoryStore()
	initiated, err := paysession.Session{}.Initiate(billing.ProviderStripe, "cs_old", "/checkout?plan=basic")
	require.NoError(t, err)
	failed, err := initiated.Resolve(billing.OutcomeCancelled)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), "sid-again", failed))

	payments := &fakePayments{session: &billing.CheckoutSession{CheckoutURL: "https://checkout.stripe.com/c/pay/cs_new", PaymentID: "cs_new"}}
	app := newCheckoutApp(t, payments, store, newFakeMonitor())

	form := url.Values{"gateway_id": {"gw_stripe"}, "save_card": {"on"}}
	req := withSession(formRequest(http.MethodPost, "/checkout/pay?plan=basic", form), "sid-again")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	require.Len(t, payments.requests, 1)
	assert.Equal(t, "true", payments.requests[0].Metadata.String("stripe_save_card"))

	raw := store.Raw("sid-again")
	assert.Equal(t, "cs_new", raw[paysession.KeyPaymentID])
	assert.Equal(t, "stripe", raw[paysession.KeyProvider])
	assert.Empty(t, raw[paysession.KeyOutcome])
}

func TestProviderMetadata(t *testing.T) {
	sel := checkout.NewSelector(checkout.Order{Amount: decimal.NewFromInt(10), Currency: "EUR", Metadata: billing.Metadata{"type": billing.PaymentTypeSubscriptionNew}})
	require.NoError(t, sel.Load(context.Background(), fakeGateways{gateways: testGateways}))
	form, err := sel.Select("gw_mollie")
	require.NoError(t, err)

	tests := []struct {
		name  string
		form  url.Values
		want  string
		found bool
	}{
		{"listed method", url.Values{"method": {"creditcard"}}, "creditcard", true},
		{"unlisted method dropped", url.Values{"method": {"bitcoin"}}, "", false},
		{"empty value dropped", url.Values{"method": {" "}}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var meta billing.Metadata
			app.Post("/", func(c *fiber.Ctx) error {
				meta = providerMetadata(c, form)
				return c.SendStatus(fiber.StatusNoContent)
			})
			_, err := app.Test(formRequest(http.MethodPost, "/", tt.form), -1)
			require.NoError(t, err)

			v, ok := meta["mollie_method"]
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, v)
			}
			// the order metadata itself is left alone
			_, leaked := form.Metadata["mollie_method"]
			assert.False(t, leaked)
			assert.Equal(t, billing.PaymentTypeSubscriptionNew, meta.Type())
		})
	}
}

var errBackendDown = errors.New("backend down")
