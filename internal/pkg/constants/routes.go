package constants

// Static route constants
const (
	PublicRoute  = "/"
	PricingRoute = "/pricing"
	ContactRoute = "/contact"
	SignupRoute  = "/signup"

	CheckoutRoute        = "/checkout"
	CheckoutGatewayRoute = "/checkout/gateway"
	CheckoutPayRoute     = "/checkout/pay"

	PaymentReturnRoute   = "/payment/return"
	PaymentStatusRoute   = "/payment/return/status"
	PaymentLeaveRoute    = "/payment/return/leave"
	PaymentContinueRoute = "/payment/return/continue"
	PaymentRetryRoute    = "/payment/return/retry"

	DashboardRoute = "/dashboard"
	UpgradeRoute   = "/dashboard/subscription/upgrade"
	RenewRoute     = "/dashboard/subscription/renew"

	AdminRoute = "/admin"
	DocsRoute  = "/docs/api/"
)
