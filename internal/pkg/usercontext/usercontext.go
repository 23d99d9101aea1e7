package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidora/vidora-web/app/models"
)

// UserContext represents the visitor of the current request
type UserContext struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// Customer returns the identity the backend knows the visitor by.
func (u UserContext) Customer() models.Customer {
	return models.Customer{ID: u.CustomerID, Name: u.Name, Email: u.Email}
}

// FromCustomer builds the context of a signed up visitor.
func FromCustomer(c models.Customer) UserContext {
	return UserContext{
		CustomerID: c.ID,
		Name:       c.Name,
		Email:      c.Email,
		IsLoggedIn: c.ID != "",
	}
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx, ok := c.Locals(LocalsKey).(UserContext); ok {
		return ctx
	}
	return UserContext{}
}

// SetUserContext stores ctx for the rest of the request.
func SetUserContext(c *fiber.Ctx, ctx UserContext) {
	c.Locals(LocalsKey, ctx)
	c.Locals(KeyFromProtected, ctx.IsLoggedIn)
	c.Locals(KeyIsAdmin, ctx.IsAdmin)
}

// IsLoggedIn checks if the visitor has an account in this session
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsAdmin checks if the request passed admin authentication
func IsAdmin(c *fiber.Ctx) bool {
	return GetUserContext(c).IsAdmin
}

// GetCustomerID returns the backend customer id, or "" for anonymous visitors
func GetCustomerID(c *fiber.Ctx) string {
	return GetUserContext(c).CustomerID
}
