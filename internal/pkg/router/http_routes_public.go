package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidora/vidora-web/app/controllers"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/middleware"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/healthz", controllers.HandleHealthz)

	// prometheus scrape endpoint
	app.Get("/metrics",
		middleware.BasicAuth("metrics", middleware.MetricsUsersFromEnv()),
		adaptor.HTTPHandler(promhttp.Handler()),
	)

	// Polled by the return page; read only, no CSRF needed
	app.Get(constants.PaymentStatusRoute, h.c.Payment.HandlePaymentStatus)
}
