// Package reconcile confirms a payment after the browser comes back from
// the provider. A redirect flag is never proof: only the backend's latest
// payment read decides the outcome.
package reconcile

import "github.com/vidora/vidora-web/internal/pkg/billing"

// State is the single state value of a payment-return run.
type State string

const (
	StateIdle              State = "idle"
	StateVerifying         State = "verifying"
	StatePolling           State = "polling"
	StateSuccess           State = "success"
	StateFailed            State = "failed"
	StateCancelled         State = "cancelled"
	StateExpired           State = "expired"
	StateTimedOut          State = "timed_out"
	StateVerificationError State = "verification_error"
)

// Terminal states stop polling.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateFailed, StateCancelled, StateExpired, StateTimedOut, StateVerificationError:
		return true
	default:
		return false
	}
}

// PaymentOutcome reports the resolved payment outcome for states that
// carry one. Timeouts and verification errors leave the payment unresolved.
func (s State) PaymentOutcome() (billing.Outcome, bool) {
	switch s {
	case StateSuccess:
		return billing.OutcomeSucceeded, true
	case StateFailed:
		return billing.OutcomeFailed, true
	case StateCancelled:
		return billing.OutcomeCancelled, true
	case StateExpired:
		return billing.OutcomeExpired, true
	default:
		return "", false
	}
}

// CanRetry is true for states that offer going back to checkout.
func (s State) CanRetry() bool {
	switch s {
	case StateFailed, StateCancelled, StateExpired:
		return true
	default:
		return false
	}
}

func (s State) Message() string {
	switch s {
	case StateIdle:
		return "No payment to confirm."
	case StateVerifying:
		return "Confirming your payment..."
	case StatePolling:
		return "Your payment is being processed. This usually takes a few seconds."
	case StateSuccess:
		return "Payment successful! Your subscription is now active."
	case StateFailed:
		return "Your payment could not be completed. No money was taken."
	case StateCancelled:
		return "You cancelled the payment."
	case StateExpired:
		return "The payment session expired before it was completed."
	case StateTimedOut:
		return "Confirming your payment is taking longer than expected. We will email you as soon as it is confirmed."
	case StateVerificationError:
		return "We could not check your payment status right now. Please refresh in a moment or contact support."
	default:
		return ""
	}
}

func stateFor(o billing.Outcome) State {
	switch o {
	case billing.OutcomeSucceeded:
		return StateSuccess
	case billing.OutcomeFailed:
		return StateFailed
	case billing.OutcomeCancelled:
		return StateCancelled
	case billing.OutcomeExpired:
		return StateExpired
	default:
		return StatePolling
	}
}
