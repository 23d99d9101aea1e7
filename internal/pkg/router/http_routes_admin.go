package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group(constants.AdminRoute,
		middleware.BasicAuth("admin", middleware.AdminUsersFromEnv()),
		middleware.RequireAdmin,
		csrfMiddleware(),
	)
	adminGroup.Get("/", h.c.Admin.HandleDashboard)
	adminGroup.Get("/monitor", monitor.New(monitor.Config{Title: "Vidora Monitor"}))

	// contacts, plans, subscriptions, users, smtp, gateways, attribution
	h.c.Resources.Register(adminGroup)
}
