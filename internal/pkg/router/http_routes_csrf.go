package router

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/vidora/vidora-web/app/controllers"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/env"
	"github.com/vidora/vidora-web/internal/pkg/middleware"
)

func csrfMiddleware() fiber.Handler {
	return csrf.New(csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/docs/")
		},
	})
}

// formLimiter throttles the public form posts per client address.
func formLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          10,
		Expiration:   1 * time.Minute,
		KeyGenerator: controllers.ClientIP,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests, please try again in a minute.")
		},
	})
}

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	group := app.Group("", cors.New(), csrfMiddleware())

	group.Get(constants.PublicRoute, h.c.Public.HandleHome)
	group.Get(constants.PricingRoute, h.c.Public.HandlePricing)
	group.Get(constants.ContactRoute, h.c.Public.HandleContact)
	group.Post(constants.ContactRoute, formLimiter(), h.c.Public.HandleContactSubmit)

	group.Get(constants.SignupRoute, h.c.Signup.HandleSignup)
	group.Post(constants.SignupRoute, formLimiter(), h.c.Signup.HandleSignupSubmit)

	// Checkout
	group.Get(constants.CheckoutRoute, middleware.RequireCustomer, h.c.Checkout.HandleCheckout)
	group.Get(constants.CheckoutGatewayRoute+"/:id", middleware.RequireCustomer, h.c.Checkout.HandleCheckoutGateway)
	group.Post(constants.CheckoutPayRoute, middleware.RequireCustomer, h.c.Checkout.HandleCheckoutPay)

	// Payment return
	group.Get(constants.PaymentReturnRoute, h.c.Payment.HandlePaymentReturn)
	group.Post(constants.PaymentLeaveRoute, h.c.Payment.HandlePaymentLeave)
	group.Get(constants.PaymentContinueRoute, h.c.Payment.HandlePaymentContinue)
	group.Get(constants.PaymentRetryRoute, h.c.Payment.HandlePaymentRetry)

	// Customer dashboard
	group.Get(constants.DashboardRoute, middleware.RequireCustomer, h.c.Dashboard.HandleDashboard)
	group.Get(constants.UpgradeRoute, middleware.RequireCustomer, h.c.Dashboard.HandleUpgrade)
	group.Get(constants.RenewRoute, middleware.RequireCustomer, h.c.Dashboard.HandleRenew)
}
