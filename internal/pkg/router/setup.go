package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidora/vidora-web/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Controllers are the request handlers the routes are bound to, built in main.
type Controllers struct {
	Public    *controllers.PublicController
	Signup    *controllers.SignupController
	Checkout  *controllers.CheckoutController
	Payment   *controllers.PaymentReturnController
	Dashboard *controllers.DashboardController
	Admin     *controllers.AdminController
	Resources *controllers.AdminResources
}

func InstallRouter(app *fiber.App, c Controllers) {
	setup(app, NewHttpRouter(c))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
