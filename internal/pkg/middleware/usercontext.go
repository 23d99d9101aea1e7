package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/session"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the visitor context for every request.
// A visitor counts as logged in once signup stored the backend customer in
// the session.
func UserContextMiddleware(c *fiber.Ctx) error {
	var customer models.Customer
	if !session.GetJSON(c, usercontext.KeyCustomer, &customer) || customer.ID == "" {
		usercontext.SetUserContext(c, usercontext.UserContext{})
		return c.Next()
	}

	usercontext.SetUserContext(c, usercontext.FromCustomer(customer))
	return c.Next()
}
