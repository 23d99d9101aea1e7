package billing

import "strings"

// Outcome is the interpretation of a payment read for the return flow.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeExpired   Outcome = "expired"
)

// Terminal reports whether no further status change is expected.
func (o Outcome) Terminal() bool {
	return o != OutcomePending && o != ""
}

// Classify maps a payment read to an Outcome. The first matching rule wins:
// succeeded (provider "paid", normalized completed, or processed), failed,
// cancelled, expired, otherwise pending.
//
// A processed payment counts as succeeded even when the raw status says
// otherwise. The backend marks isProcessed once the webhook ran, which is
// not strictly the same thing as paid.
func Classify(p Payment) Outcome {
	raw := strings.ToLower(strings.TrimSpace(p.Status))
	norm := NormalizedStatus(strings.ToLower(strings.TrimSpace(string(p.NormalizedStatus))))

	switch {
	case raw == "paid" || norm == StatusCompleted || p.IsProcessed:
		return OutcomeSucceeded
	case raw == "failed" || norm == StatusFailed:
		return OutcomeFailed
	case raw == "canceled" || raw == "cancelled" || norm == StatusCancelled:
		return OutcomeCancelled
	case raw == "expired" || norm == StatusExpired:
		return OutcomeExpired
	default:
		return OutcomePending
	}
}
