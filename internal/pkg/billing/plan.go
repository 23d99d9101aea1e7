package billing

import "strings"

// NormalizePeriod maps the billing period spellings found in plan data and
// legacy signup links to monthly, yearly or unknown.
func NormalizePeriod(period string) string {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "month", "monthly", "mo", "1m":
		return "monthly"
	case "year", "yearly", "annual", "annually", "yr", "12m":
		return "yearly"
	default:
		return "unknown"
	}
}

// NormalizePaymentType keeps known payment types and treats anything else
// as a new subscription.
func NormalizePaymentType(t string) string {
	switch v := strings.ToLower(strings.TrimSpace(t)); v {
	case PaymentTypeSubscriptionUpgrade, PaymentTypeSubscriptionRenewal:
		return v
	default:
		return PaymentTypeSubscriptionNew
	}
}
