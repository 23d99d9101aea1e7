package reconcile

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/internal/pkg/billing"
)

func TestDetectTrigger(t *testing.T) {
	extra := map[string][]string{"mollie": {"pay.mollie.nl"}}

	tests := []struct {
		name string
		sig  Signals
		want Trigger
	}{
		{"nothing", Signals{}, Trigger{}},
		{"success flag", Signals{Query: url.Values{"success": {"true"}}}, Trigger{Kind: TriggerSuccess}},
		{"cancelled flag", Signals{Query: url.Values{"cancelled": {"true"}}}, Trigger{Kind: TriggerCancelled}},
		{"failed flag", Signals{Query: url.Values{"failed": {"true"}}}, Trigger{Kind: TriggerFailed}},
		{"flag must be true", Signals{Query: url.Values{"success": {"1"}}}, Trigger{}},
		{"stripe referrer", Signals{Referrer: "https://checkout.stripe.com/c/pay/cs_test"}, Trigger{Kind: TriggerReferrer, Provider: billing.ProviderStripe}},
		{"paypal subdomain", Signals{Referrer: "https://www.sandbox.paypal.com/checkoutnow"}, Trigger{Kind: TriggerReferrer, Provider: billing.ProviderPayPal}},
		{"configured extra domain", Signals{Referrer: "https://pay.mollie.nl/x"}, Trigger{Kind: TriggerReferrer, Provider: billing.ProviderMollie}},
		{"lookalike host", Signals{Referrer: "https://notstripe.com/"}, Trigger{}},
		{"session marker", Signals{SessionInitiated: true, Referrer: "https://vidora.tv/"}, Trigger{Kind: TriggerSession}},
		{"flag wins over referrer", Signals{Query: url.Values{"success": {"true"}}, Referrer: "https://www.mollie.com"}, Trigger{Kind: TriggerSuccess}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectTrigger(tt.sig, extra))
		})
	}
}

func TestStripOneShot(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		changed bool
	}{
		{"/payment/return?success=true", "/payment/return", true},
		{"/payment/return?cancelled=true&plan=pro", "/payment/return?plan=pro", true},
		{"/payment/return?failed=true&success=true", "/payment/return", true},
		{"/payment/return?plan=pro", "/payment/return?plan=pro", false},
		{"/payment/return", "/payment/return", false},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.in)
		require.NoError(t, err)
		got, changed := StripOneShot(u)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.changed, changed, tt.in)
	}
}

func TestStateOutcomes(t *testing.T) {
	o, ok := StateSuccess.PaymentOutcome()
	assert.True(t, ok)
	assert.Equal(t, billing.OutcomeSucceeded, o)

	_, ok = StateTimedOut.PaymentOutcome()
	assert.False(t, ok)
	_, ok = StatePolling.PaymentOutcome()
	assert.False(t, ok)

	assert.True(t, StateTimedOut.Terminal())
	assert.False(t, StatePolling.Terminal())
	assert.NotEqual(t, StateFailed.Message(), StateVerificationError.Message())
}
