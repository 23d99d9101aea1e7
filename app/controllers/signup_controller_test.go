package controllers

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
)

type fakeRegistrar struct {
	registered []models.Registration
	customer   *models.Customer
	err        error
}

func (f *fakeRegistrar) RegisterUser(_ context.Context, reg models.Registration) (*models.Customer, error) {
	f.registered = append(f.registered, reg)
	if f.err != nil {
		return nil, f.err
	}
	return f.customer, nil
}

func newSignupApp(t *testing.T, registrar *fakeRegistrar) *fiber.App {
	t.Helper()
	app := newTestApp(t)
	sc := NewSignupController(fakePlans{plans: testPlans}, registrar, nil, "", nil)
	app.Post("/signup", sc.HandleSignupSubmit)
	return app
}

func validSignup() url.Values {
	return url.Values{
		"name":             {"Ada Lovelace"},
		"email":            {"ada@example.com"},
		"password":         {"analytical-engine"},
		"password_confirm": {"analytical-engine"},
		"accept_terms":     {"on"},
	}
}

func TestSignupSubmit(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(url.Values)
		status   int
		location string
		planID   string
	}{
		{
			name:     "with plan continues to checkout",
			mutate:   func(v url.Values) { v.Set("plan", "premium") },
			status:   fiber.StatusSeeOther,
			location: "/checkout?plan=premium",
			planID:   "plan_premium",
		},
		{
			name:     "without plan goes to pricing",
			mutate:   func(url.Values) {},
			status:   fiber.StatusSeeOther,
			location: "/pricing",
		},
		{
			name:     "unknown plan is ignored",
			mutate:   func(v url.Values) { v.Set("plan", "enterprise") },
			status:   fiber.StatusSeeOther,
			location: "/pricing",
		},
		{
			name:     "local next is honoured",
			mutate:   func(v url.Values) { v.Set("next", "/dashboard") },
			status:   fiber.StatusSeeOther,
			location: "/dashboard",
		},
		{
			name:     "foreign next falls back",
			mutate:   func(v url.Values) { v.Set("next", "https://evil.example.com/") },
			status:   fiber.StatusSeeOther,
			location: "/pricing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := &fakeRegistrar{customer: &models.Customer{ID: "cus_9"}}
			app := newSignupApp(t, registrar)

			form := validSignup()
			tt.mutate(form)
			resp, err := app.Test(withSession(formRequest(http.MethodPost, "/signup", form), "sid-signup"), -1)
			require.NoError(t, err)

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.location, resp.Header.Get(fiber.HeaderLocation))
			require.Len(t, registrar.registered, 1)
			assert.Equal(t, tt.planID, registrar.registered[0].PlanID)
			assert.Equal(t, "ada@example.com", registrar.registered[0].Email)
		})
	}
}

func TestSignupSubmitValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(url.Values)
		message string
	}{
		{"invalid email", func(v url.Values) { v.Set("email", "not-an-email") }, "Please enter a valid email address"},
		{"short password", func(v url.Values) { v.Set("password", "short"); v.Set("password_confirm", "short") }, "Must be at least 8 characters"},
		{"terms not accepted", func(v url.Values) { v.Del("accept_terms") }, "This field is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := &fakeRegistrar{customer: &models.Customer{ID: "cus_9"}}
			app := newSignupApp(t, registrar)

			form := validSignup()
			tt.mutate(form)
			resp, err := app.Test(formRequest(http.MethodPost, "/signup", form), -1)
			require.NoError(t, err)

			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
			body := readBody(t, resp)
			assert.Contains(t, body, tt.message)
			assert.NotContains(t, body, "analytical-engine")
			assert.Empty(t, registrar.registered)
		})
	}
}

func TestSignupSubmitBackendErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"business error", &apiclient.APIError{Endpoint: "register", StatusCode: http.StatusConflict, Message: "Email already registered"}, fiber.StatusUnprocessableEntity},
		{"transport error", &apiclient.TransportError{Endpoint: "register", Err: errBackendDown}, fiber.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newSignupApp(t, &fakeRegistrar{err: tt.err})
			resp, err := app.Test(formRequest(http.MethodPost, "/signup", validSignup()), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
