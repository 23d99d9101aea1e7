package billing

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   Payment
		want Outcome
	}{
		{name: "provider paid", in: Payment{Status: "paid", NormalizedStatus: StatusPending}, want: OutcomeSucceeded},
		{name: "normalized completed", in: Payment{Status: "open", NormalizedStatus: StatusCompleted}, want: OutcomeSucceeded},
		{name: "processed flag wins over open status", in: Payment{Status: "open", NormalizedStatus: StatusPending, IsProcessed: true}, want: OutcomeSucceeded},
		{name: "processed flag wins over failed status", in: Payment{Status: "failed", IsProcessed: true}, want: OutcomeSucceeded},
		{name: "provider failed", in: Payment{Status: "failed"}, want: OutcomeFailed},
		{name: "normalized failed", in: Payment{Status: "declined", NormalizedStatus: StatusFailed}, want: OutcomeFailed},
		{name: "american spelling", in: Payment{Status: "canceled"}, want: OutcomeCancelled},
		{name: "british spelling", in: Payment{Status: "cancelled"}, want: OutcomeCancelled},
		{name: "normalized cancelled", in: Payment{NormalizedStatus: StatusCancelled}, want: OutcomeCancelled},
		{name: "provider expired", in: Payment{Status: "expired"}, want: OutcomeExpired},
		{name: "normalized expired", in: Payment{NormalizedStatus: StatusExpired}, want: OutcomeExpired},
		{name: "failed before cancelled", in: Payment{Status: "failed", NormalizedStatus: StatusCancelled}, want: OutcomeFailed},
		{name: "case insensitive", in: Payment{Status: "PAID"}, want: OutcomeSucceeded},
		{name: "open is pending", in: Payment{Status: "open", NormalizedStatus: StatusPending}, want: OutcomePending},
		{name: "empty is pending", in: Payment{}, want: OutcomePending},
	}

	for _, tt := range tests {
		if got := Classify(tt.in); got != tt.want {
			t.Fatalf("%s: Classify(%+v) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestOutcomeTerminal(t *testing.T) {
	for _, o := range []Outcome{OutcomeSucceeded, OutcomeFailed, OutcomeCancelled, OutcomeExpired} {
		if !o.Terminal() {
			t.Fatalf("expected %q to be terminal", o)
		}
	}
	if OutcomePending.Terminal() {
		t.Fatalf("expected pending to be non-terminal")
	}
}

func TestMetadataCompletesSubscription(t *testing.T) {
	tests := []struct {
		in   Metadata
		want bool
	}{
		{in: Metadata{"type": "subscription_upgrade"}, want: true},
		{in: Metadata{"type": "Subscription_Renewal"}, want: true},
		{in: Metadata{"type": "subscription_new"}, want: false},
		{in: Metadata{"planId": 3}, want: false},
		{in: nil, want: false},
	}

	for _, tt := range tests {
		if got := tt.in.CompletesSubscription(); got != tt.want {
			t.Fatalf("CompletesSubscription(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
