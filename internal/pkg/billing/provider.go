package billing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Provider identifies a payment gateway integration. The zero value is
// ProviderUnknown, used for providers the backend knows but this app does not.
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderMollie
	ProviderStripe
	ProviderPayPal
)

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderMollie, ProviderStripe, ProviderPayPal}

// ParseProvider maps the backend's provider string to a Provider.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mollie":
		return ProviderMollie, nil
	case "stripe":
		return ProviderStripe, nil
	case "paypal":
		return ProviderPayPal, nil
	default:
		return ProviderUnknown, fmt.Errorf("unknown payment provider %q", s)
	}
}

func (p Provider) String() string {
	switch p {
	case ProviderMollie:
		return "mollie"
	case ProviderStripe:
		return "stripe"
	case ProviderPayPal:
		return "paypal"
	default:
		return "unknown"
	}
}

func (p Provider) DisplayName() string {
	switch p {
	case ProviderMollie:
		return "Mollie"
	case ProviderStripe:
		return "Stripe"
	case ProviderPayPal:
		return "PayPal"
	default:
		return "Unknown provider"
	}
}

// CheckoutDomains returns the hosts a browser comes back from after a
// redirect checkout with this provider.
func (p Provider) CheckoutDomains() []string {
	switch p {
	case ProviderMollie:
		return []string{"mollie.com", "www.mollie.com"}
	case ProviderStripe:
		return []string{"checkout.stripe.com", "stripe.com"}
	case ProviderPayPal:
		return []string{"paypal.com", "www.paypal.com"}
	default:
		return nil
	}
}

func (p Provider) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON never fails on unknown names so that one new backend
// provider does not break decoding of a whole gateway list.
func (p *Provider) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, _ := ParseProvider(s)
	*p = parsed
	return nil
}
