package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	fsession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/internal/pkg/session"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
)

// newTestApp returns an app rendering the real views with an in-memory
// session store.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	session.SetSessionStore(fsession.New(fsession.Config{KeyLookup: "cookie:session_id"}))
	t.Cleanup(func() { session.SetSessionStore(nil) })
	return fiber.New(fiber.Config{Views: html.New("../../views", ".html")})
}

func asCustomer(id string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usercontext.SetUserContext(c, usercontext.UserContext{
			CustomerID: id,
			Name:       "Ada Lovelace",
			Email:      "ada@example.com",
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

func withSession(req *http.Request, sid string) *http.Request {
	req.Header.Set("Cookie", "session_id="+sid)
	return req
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return req
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/checkout?plan=premium", "/checkout?plan=premium"},
		{"  /dashboard ", "/dashboard"},
		{"", "/fallback"},
		{"https://evil.example.com", "/fallback"},
		{"//evil.example.com", "/fallback"},
		{"/\\evil.example.com", "/fallback"},
		{"dashboard", "/fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			assert.Equal(t, tt.want, safeNext(tt.next, "/fallback"))
		})
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}, "203.0.113.7"},
		{"first forwarded entry", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"real ip", map[string]string{"X-Real-IP": "192.0.2.5"}, "192.0.2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got string
			app.Get("/", func(c *fiber.Ctx) error {
				got = ClientIP(c)
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			_, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckbox(t *testing.T) {
	for _, v := range []string{"on", "true", "1", "YES"} {
		assert.True(t, checkbox(v), v)
	}
	for _, v := range []string{"", "off", "0", "no"} {
		assert.False(t, checkbox(v), v)
	}
}
