package billing

import "testing"

func TestNormalizePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "month", want: "monthly"},
		{in: "Monthly", want: "monthly"},
		{in: "year", want: "yearly"},
		{in: " ANNUAL ", want: "yearly"},
		{in: "weekly", want: "unknown"},
		{in: "", want: "unknown"},
	}

	for _, tt := range tests {
		if got := NormalizePeriod(tt.in); got != tt.want {
			t.Fatalf("NormalizePeriod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePaymentType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "subscription_upgrade", want: PaymentTypeSubscriptionUpgrade},
		{in: "SUBSCRIPTION_RENEWAL", want: PaymentTypeSubscriptionRenewal},
		{in: "subscription_new", want: PaymentTypeSubscriptionNew},
		{in: "gift", want: PaymentTypeSubscriptionNew},
	}

	for _, tt := range tests {
		if got := NormalizePaymentType(tt.in); got != tt.want {
			t.Fatalf("NormalizePaymentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
