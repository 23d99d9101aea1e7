package controllers

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vidora/vidora-web/internal/pkg/env"
	"github.com/vidora/vidora-web/internal/pkg/flash"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
	"github.com/vidora/vidora-web/internal/pkg/utils"
	"github.com/vidora/vidora-web/internal/pkg/viewmodel"
)

const (
	mainLayout  = "layouts/main"
	adminLayout = "layouts/admin"

	backendTimeout = 15 * time.Second
)

func isLoggedIn(c *fiber.Ctx) bool {
	return usercontext.IsLoggedIn(c)
}

// csrfToken returns the token set by the csrf middleware, "" on routes
// without it.
func csrfToken(c *fiber.Ctx) string {
	if token, ok := c.Locals("csrf").(string); ok {
		return token
	}
	return ""
}

// backendContext bounds a backend call by the request context.
func backendContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), backendTimeout)
}

func layoutFor(c *fiber.Ctx, title string, og *viewmodel.OpenGraph) viewmodel.Layout {
	userCtx := usercontext.GetUserContext(c)
	msg := flash.Get(c)
	avatar := ""
	if userCtx.IsLoggedIn {
		avatar = utils.GravatarURL(userCtx.Email, 32)
	}
	return viewmodel.Layout{
		Page:          title,
		FromProtected: userCtx.IsLoggedIn,
		IsError:       msg != nil && msg["type"] == "error",
		Msg:           msg,
		Username:      userCtx.Name,
		Avatar:        avatar,
		IsAdmin:       userCtx.IsAdmin,
		CSRF:          csrfToken(c),
		IsDev:         env.IsDev(),
		OGViewModel:   og,
	}
}

// render renders view inside the main layout with the common layout data.
func render(c *fiber.Ctx, view, title string, data fiber.Map, og ...*viewmodel.OpenGraph) error {
	if data == nil {
		data = fiber.Map{}
	}
	var ogModel *viewmodel.OpenGraph
	if len(og) > 0 {
		ogModel = og[0]
	}
	data["Layout"] = layoutFor(c, title, ogModel)
	return c.Render(view, data, mainLayout)
}

// renderAdmin renders view inside the admin layout.
func renderAdmin(c *fiber.Ctx, view, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Layout"] = layoutFor(c, title, nil)
	return c.Render(view, data, adminLayout)
}

// renderPartial renders a template without layout into HTML that can be
// embedded in a page.
func renderPartial(c *fiber.Ctx, name string, data interface{}) (template.HTML, error) {
	views := c.App().Config().Views
	if views == nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "no view engine configured")
	}
	var buf bytes.Buffer
	if err := views.Render(&buf, name, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// safeNext only allows same-site relative redirect targets.
func safeNext(next, fallback string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// ClientIP returns the address of the visitor, honouring the Cloudflare and
// proxy headers in front of the app.
func ClientIP(c *fiber.Ctx) string {
	if ip := strings.TrimSpace(c.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(c.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return strings.TrimPrefix(c.IP(), "::ffff:")
}
