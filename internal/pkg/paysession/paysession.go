// Package paysession tracks a browser's checkout between leaving for the
// payment provider and the return page resolving it.
//
// A session moves none -> initiated(provider) -> resolved(outcome). Only
// the checkout handler initiates and only the reconciliation flow resolves.
package paysession

import (
	"errors"
	"strings"

	"github.com/vidora/vidora-web/internal/pkg/billing"
)

// Marker keys as stored per browser session.
const (
	KeyInitiated = "payment_initiated"
	KeyProvider  = "payment_provider"
	KeyPaymentID = "payment_id"
	KeyOriginURL = "payment_origin_url"
	KeyOutcome   = "payment_outcome"
)

type Phase int

const (
	PhaseNone Phase = iota
	PhaseInitiated
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseInitiated:
		return "initiated"
	case PhaseResolved:
		return "resolved"
	default:
		return "none"
	}
}

var (
	ErrAlreadyResolved = errors.New("payment session already resolved")
	ErrNotTerminal     = errors.New("payment outcome is not terminal")
	ErrUnknownProvider = errors.New("payment session needs a known provider")
)

// Session is the per-browser payment marker set.
type Session struct {
	Phase     Phase
	Provider  billing.Provider
	PaymentID string
	OriginURL string
	Outcome   billing.Outcome
}

// Initiated reports whether a checkout was started and not yet resolved.
func (s Session) Initiated() bool {
	return s.Phase == PhaseInitiated
}

// CanRetry is true after a failed, cancelled or expired payment that left
// an origin to go back to.
func (s Session) CanRetry() bool {
	return s.Phase == PhaseResolved && s.Outcome != billing.OutcomeSucceeded && s.OriginURL != ""
}

// Initiate starts a checkout. A fresh initiation replaces any earlier
// resolution, so a retry after a failed payment is allowed.
func (s Session) Initiate(provider billing.Provider, paymentID, originURL string) (Session, error) {
	if provider == billing.ProviderUnknown {
		return s, ErrUnknownProvider
	}
	return Session{
		Phase:     PhaseInitiated,
		Provider:  provider,
		PaymentID: strings.TrimSpace(paymentID),
		OriginURL: safeOrigin(originURL),
	}, nil
}

// Resolve records a terminal outcome. Success clears every marker; any
// other outcome keeps only the origin URL for the retry action.
func (s Session) Resolve(outcome billing.Outcome) (Session, error) {
	if !outcome.Terminal() {
		return s, ErrNotTerminal
	}
	if s.Phase == PhaseResolved {
		return s, ErrAlreadyResolved
	}
	if outcome == billing.OutcomeSucceeded {
		return Session{Phase: PhaseResolved, Outcome: outcome}, nil
	}
	return Session{Phase: PhaseResolved, Outcome: outcome, OriginURL: s.OriginURL}, nil
}

// Markers returns the non-empty stored fields.
func (s Session) Markers() map[string]string {
	out := map[string]string{}
	if s.Phase == PhaseInitiated {
		out[KeyInitiated] = "true"
	}
	if s.Provider != billing.ProviderUnknown {
		out[KeyProvider] = s.Provider.String()
	}
	if s.PaymentID != "" {
		out[KeyPaymentID] = s.PaymentID
	}
	if s.OriginURL != "" {
		out[KeyOriginURL] = s.OriginURL
	}
	if s.Phase == PhaseResolved && s.Outcome != "" {
		out[KeyOutcome] = string(s.Outcome)
	}
	return out
}

// FromMarkers rebuilds a Session from stored fields.
func FromMarkers(m map[string]string) Session {
	s := Session{
		PaymentID: m[KeyPaymentID],
		OriginURL: m[KeyOriginURL],
	}
	s.Provider, _ = billing.ParseProvider(m[KeyProvider])
	switch {
	case m[KeyInitiated] == "true":
		s.Phase = PhaseInitiated
	case m[KeyOutcome] != "":
		s.Phase = PhaseResolved
		s.Outcome = billing.Outcome(m[KeyOutcome])
	case s.OriginURL != "":
		// Origin left behind by a failed attempt without an outcome field.
		s.Phase = PhaseResolved
	}
	return s
}

// safeOrigin only keeps same-site relative paths.
func safeOrigin(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return ""
	}
	return u
}
