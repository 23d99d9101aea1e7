package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/env"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
)

// RequireCustomer ensures the visitor signed up in this session; redirects to
// signup otherwise and comes back afterwards.
func RequireCustomer(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		next := url.QueryEscape(c.OriginalURL())
		return c.Redirect(constants.SignupRoute+"?next="+next, fiber.StatusSeeOther)
	}
	return c.Next()
}

// RequireAPICustomer is RequireCustomer for JSON endpoints: 401 instead of a redirect.
func RequireAPICustomer(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "signup required",
		})
	}
	return c.Next()
}

// AdminUsersFromEnv returns the basic auth users for the admin area. Without
// ADMIN_PASSWORD nobody gets in.
func AdminUsersFromEnv() map[string]string {
	user := strings.TrimSpace(env.GetEnv("ADMIN_USER", "admin"))
	password := env.GetEnv("ADMIN_PASSWORD", "")
	if password == "" {
		log.Warn("[Auth] ADMIN_PASSWORD is not set, the admin area is locked")
		return map[string]string{}
	}
	return map[string]string{user: password}
}

// MetricsUsersFromEnv returns the basic auth users for /metrics.
func MetricsUsersFromEnv() map[string]string {
	user := strings.TrimSpace(env.GetEnv("METRICS_USER", "metrics"))
	password := env.GetEnv("METRICS_PASSWORD", "")
	if password == "" {
		return AdminUsersFromEnv()
	}
	return map[string]string{user: password}
}

// BasicAuth guards a route group with the given users.
func BasicAuth(realm string, users map[string]string) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: users,
		Realm: realm,
	})
}

// RequireAdmin marks the request as admin. It runs behind BasicAuth, which
// already rejected everybody else.
func RequireAdmin(c *fiber.Ctx) error {
	ctx := usercontext.GetUserContext(c)
	ctx.IsAdmin = true
	usercontext.SetUserContext(c, ctx)
	return c.Next()
}
