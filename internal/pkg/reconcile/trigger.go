package reconcile

import (
	"net/url"
	"strings"

	"github.com/vidora/vidora-web/internal/pkg/billing"
)

// TriggerKind says why the return page started a run.
type TriggerKind string

const (
	TriggerNone      TriggerKind = ""
	TriggerSuccess   TriggerKind = "query_success"
	TriggerCancelled TriggerKind = "query_cancelled"
	TriggerFailed    TriggerKind = "query_failed"
	TriggerReferrer  TriggerKind = "referrer"
	TriggerSession   TriggerKind = "session"
)

// OneShotParams are consumed once and stripped from the visible URL.
var OneShotParams = []string{"success", "cancelled", "failed"}

type Trigger struct {
	Kind TriggerKind
	// Provider is set when the referrer identified it.
	Provider billing.Provider
}

func (t Trigger) Active() bool {
	return t.Kind != TriggerNone
}

// Signals are the inputs of trigger detection for one page load.
type Signals struct {
	Query            url.Values
	Referrer         string
	SessionInitiated bool
}

// DetectTrigger checks the explicit query flags first, then the referrer,
// then the stored payment_initiated marker. extraDomains adds hosts per
// provider name on top of Provider.CheckoutDomains.
func DetectTrigger(sig Signals, extraDomains map[string][]string) Trigger {
	switch {
	case sig.Query.Get("success") == "true":
		return Trigger{Kind: TriggerSuccess}
	case sig.Query.Get("cancelled") == "true":
		return Trigger{Kind: TriggerCancelled}
	case sig.Query.Get("failed") == "true":
		return Trigger{Kind: TriggerFailed}
	}
	if p := ProviderForReferrer(sig.Referrer, extraDomains); p != billing.ProviderUnknown {
		return Trigger{Kind: TriggerReferrer, Provider: p}
	}
	if sig.SessionInitiated {
		return Trigger{Kind: TriggerSession}
	}
	return Trigger{}
}

// ProviderForReferrer maps a referrer URL to the provider whose checkout
// host it is. Subdomains of a listed host match too.
func ProviderForReferrer(referrer string, extraDomains map[string][]string) billing.Provider {
	if referrer == "" {
		return billing.ProviderUnknown
	}
	u, err := url.Parse(referrer)
	if err != nil {
		return billing.ProviderUnknown
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return billing.ProviderUnknown
	}
	for _, p := range billing.Providers {
		domains := append([]string{}, p.CheckoutDomains()...)
		domains = append(domains, extraDomains[p.String()]...)
		for _, d := range domains {
			d = strings.ToLower(strings.TrimSpace(d))
			if d != "" && (host == d || strings.HasSuffix(host, "."+d)) {
				return p
			}
		}
	}
	return billing.ProviderUnknown
}

// StripOneShot removes the one-shot params and reports whether any were
// present. The returned string is the path plus remaining query.
func StripOneShot(u *url.URL) (string, bool) {
	q := u.Query()
	changed := false
	for _, k := range OneShotParams {
		if q.Has(k) {
			q.Del(k)
			changed = true
		}
	}
	clean := u.Path
	if enc := q.Encode(); enc != "" {
		clean += "?" + enc
	}
	return clean, changed
}
