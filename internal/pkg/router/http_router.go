package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidora/vidora-web/internal/pkg/middleware"
	"github.com/vidora/vidora-web/internal/pkg/session"
)

type HttpRouter struct {
	c Controllers
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	if session.GetSessionStore() == nil {
		session.NewSessionStore()
	}

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter(c Controllers) *HttpRouter {
	return &HttpRouter{c: c}
}
