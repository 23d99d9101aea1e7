package billing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayDecodeAndFees(t *testing.T) {
	raw := []byte(`{
		"id": "gw_1",
		"provider": "mollie",
		"displayName": "iDEAL & cards",
		"supportedCurrencies": ["EUR"],
		"supportedMethods": ["ideal", "creditcard"],
		"fees": {"fixed": 0.25, "percentage": "1.8"},
		"minAmount": 1,
		"maxAmount": null,
		"isRecommended": true
	}`)

	var g Gateway
	require.NoError(t, json.Unmarshal(raw, &g))
	assert.Equal(t, ProviderMollie, g.Provider)
	assert.True(t, g.IsRecommended)
	assert.True(t, g.MinAmount.Valid)
	assert.False(t, g.MaxAmount.Valid)

	fee := g.FeeFor(decimal.RequireFromString("9.99"))
	assert.Equal(t, "0.43", fee.StringFixed(2))

	assert.True(t, g.Accepts(decimal.NewFromInt(10), "eur"))
	assert.False(t, g.Accepts(decimal.NewFromInt(10), "USD"))
	assert.False(t, g.Accepts(decimal.RequireFromString("0.50"), "EUR"))
}

func TestGatewayWithoutCurrencyList(t *testing.T) {
	g := Gateway{MaxAmount: decimal.NewNullDecimal(decimal.NewFromInt(100))}
	assert.True(t, g.SupportsCurrency("CHF"))
	assert.True(t, g.WithinLimits(decimal.NewFromInt(100)))
	assert.False(t, g.WithinLimits(decimal.NewFromInt(101)))
}
