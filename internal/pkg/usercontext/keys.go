package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	LocalsKey        = "USER_CONTEXT"
	KeyCustomer      = "customer"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"

	// Funnel state kept in the web session between pages
	KeyPlanSelection  = "plan_selection"
	KeyAttribution    = "attribution"
	KeyCheckoutIntent = "checkout_intent"
)
