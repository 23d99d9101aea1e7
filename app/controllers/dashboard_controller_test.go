package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/app/models"
)

type fakeSubscriptions struct {
	sub *models.Subscription
	err error
}

func (f fakeSubscriptions) CurrentSubscription(context.Context, string) (*models.Subscription, error) {
	return f.sub, f.err
}

func TestUpgradesFor(t *testing.T) {
	plans := []models.Plan{
		{Slug: "basic", Name: "Basic", Price: decimal.RequireFromString("4.99"), MaxStreams: 1, MaxQuality: "hd"},
		{Slug: "premium", Name: "Premium", Price: decimal.RequireFromString("12.99"), MaxStreams: 4, MaxQuality: "uhd"},
		{Slug: "family", Name: "Family", Price: decimal.RequireFromString("9.99"), MaxStreams: 3, MaxQuality: "hd"},
	}
	sub := &models.Subscription{PlanSlug: "basic", Price: decimal.RequireFromString("4.99")}

	got := upgradesFor(sub, plans)
	require.Len(t, got, 2)
	assert.Equal(t, "premium", got[0].Plan.Slug)
	assert.Equal(t, []string{"3 more simultaneous streams", "4K Ultra HD instead of HD"}, got[0].Gains)
	assert.Equal(t, "family", got[1].Plan.Slug)
	assert.Equal(t, []string{"2 more simultaneous streams"}, got[1].Gains)

	top := &models.Subscription{PlanSlug: "premium", Price: decimal.RequireFromString("12.99")}
	assert.Empty(t, upgradesFor(top, plans))
}

func TestDashboardShowsUpgrades(t *testing.T) {
	end := time.Now().Add(10 * 24 * time.Hour)
	sub := &models.Subscription{
		ID: "sub_1", PlanName: "Basic", PlanSlug: "basic", Status: "active",
		Price: decimal.RequireFromString("4.99"), Currency: "EUR", Period: "monthly", EndDate: &end,
	}
	app := newTestApp(t)
	dc := NewDashboardController(fakeSubscriptions{sub: sub}, fakePlans{plans: testPlans})
	app.Get("/dashboard", asCustomer("cus_1"), dc.HandleDashboard)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "Basic")
	assert.Contains(t, body, "/dashboard/subscription/upgrade?plan=premium")
}
