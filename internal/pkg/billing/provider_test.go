package billing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	for _, p := range Providers {
		got, err := ParseProvider(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.NotEmpty(t, p.CheckoutDomains())
	}

	got, err := ParseProvider("klarna")
	assert.Error(t, err)
	assert.Equal(t, ProviderUnknown, got)
	assert.Empty(t, got.CheckoutDomains())
}

func TestProviderJSON(t *testing.T) {
	var g struct {
		Provider Provider `json:"provider"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"provider":"PayPal"}`), &g))
	assert.Equal(t, ProviderPayPal, g.Provider)

	require.NoError(t, json.Unmarshal([]byte(`{"provider":"adyen"}`), &g))
	assert.Equal(t, ProviderUnknown, g.Provider)

	out, err := json.Marshal(struct {
		Provider Provider `json:"provider"`
	}{ProviderStripe})
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"stripe"}`, string(out))
}
