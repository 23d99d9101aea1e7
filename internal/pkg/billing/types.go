package billing

import (
	"fmt"
	"strings"
	"time"
)

// NormalizedStatus is the provider-agnostic payment status kept by the backend.
type NormalizedStatus string

const (
	StatusPending   NormalizedStatus = "pending"
	StatusCompleted NormalizedStatus = "completed"
	StatusFailed    NormalizedStatus = "failed"
	StatusCancelled NormalizedStatus = "cancelled"
	StatusExpired   NormalizedStatus = "expired"
)

// Payment types carried in Metadata["type"].
const (
	PaymentTypeSubscriptionNew     = "subscription_new"
	PaymentTypeSubscriptionUpgrade = "subscription_upgrade"
	PaymentTypeSubscriptionRenewal = "subscription_renewal"
)

// Metadata is the opaque key/value bag attached to a payment.
type Metadata map[string]interface{}

func (m Metadata) String(key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Type returns the payment type, e.g. subscription_upgrade.
func (m Metadata) Type() string {
	return strings.ToLower(strings.TrimSpace(m.String("type")))
}

// CompletesSubscription reports whether a successful payment must be
// followed by the upgrade-completion call.
func (m Metadata) CompletesSubscription() bool {
	switch m.Type() {
	case PaymentTypeSubscriptionUpgrade, PaymentTypeSubscriptionRenewal:
		return true
	default:
		return false
	}
}

// Clone returns a shallow copy so callers can add keys without touching
// the original bag.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Payment is the read model returned by the latest-payment endpoint.
type Payment struct {
	ID                 string           `json:"id"`
	Status             string           `json:"status"`
	NormalizedStatus   NormalizedStatus `json:"normalizedStatus"`
	Provider           string           `json:"provider"`
	IsProcessed        bool             `json:"isProcessed"`
	WebhookProcessedAt *time.Time       `json:"webhookProcessedAt,omitempty"`
	Metadata           Metadata         `json:"metadata,omitempty"`
}

// ProviderKind parses the raw provider name.
func (p Payment) ProviderKind() Provider {
	kind, _ := ParseProvider(p.Provider)
	return kind
}
