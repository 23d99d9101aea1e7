package signup

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vidora/vidora-web/app/models"
)

func TestParsePlanSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PlanSelection
		ok    bool
	}{
		{"slug", "plan=Pro-Monthly", PlanSelection{Slug: "pro-monthly"}, true},
		{"legacy plan_id", "plan_id=42", PlanSelection{LegacyID: "42"}, true},
		{"slug wins", "plan=basic&plan_id=42", PlanSelection{Slug: "basic"}, true},
		{"legacy json", `plan={"id":7,"name":"Premium","period":"annual"}`, PlanSelection{LegacyID: "7", Name: "Premium", Period: "yearly"}, true},
		{"legacy json with slug", `plan={"id":"abc","slug":"premium"}`, PlanSelection{Slug: "premium"}, true},
		{"broken json falls back to plan_id", `plan={"id":&plan_id=9`, PlanSelection{LegacyID: "9"}, true},
		{"invalid slug", "plan=../../etc", PlanSelection{}, false},
		{"affiliation only", "affiliation=partner-x", PlanSelection{Affiliation: "partner-x"}, false},
		{"empty", "", PlanSelection{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad query %q: %v", tt.query, err)
			}
			got, ok := ParsePlanSelection(q)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestResolvePlan(t *testing.T) {
	plans := []models.Plan{
		{ID: "1", Slug: "basic", IsActive: true},
		{ID: "2", Slug: "pro", IsActive: true},
		{ID: "3", Slug: "legacy", IsActive: false},
	}

	p, ok := PlanSelection{Slug: "pro"}.Resolve(plans)
	assert.True(t, ok)
	assert.Equal(t, "2", p.ID)

	p, ok = PlanSelection{LegacyID: "1"}.Resolve(plans)
	assert.True(t, ok)
	assert.Equal(t, "basic", p.Slug)

	_, ok = PlanSelection{Slug: "legacy"}.Resolve(plans)
	assert.False(t, ok)
}

func TestParseAttribution(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	q := url.Values{
		"utm_source":   {"newsletter"},
		"utm_medium":   {"email"},
		"utm_campaign": {"spring"},
		"promo_code":   {"spring25"},
		"affiliate_id": {"aff-1"},
		"timestamp":    {"1767225600000"},
	}
	a, ok := ParseAttribution(q, "https://mail.example.com/", now)
	assert.True(t, ok)
	assert.Equal(t, "newsletter", a.UTMSource)
	assert.Equal(t, "SPRING25", a.PromoCode)
	assert.Equal(t, "https://mail.example.com/", a.Referrer)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), a.Timestamp)

	rec := a.Record("sid-1", "/signup", "203.0.113.9", PlanSelection{Slug: "pro", Affiliation: "partner"})
	assert.Equal(t, "sid-1", rec.SessionID)
	assert.Equal(t, "pro", rec.PlanSlug)
	assert.Equal(t, "partner", rec.Affiliation)
	assert.Equal(t, "aff-1", rec.AffiliateID)
}

func TestParseAttributionWithoutCampaign(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a, ok := ParseAttribution(url.Values{}, "https://www.google.com/", now)
	assert.False(t, ok)
	assert.Equal(t, "https://www.google.com/", a.Referrer)
	assert.Equal(t, now, a.Timestamp)
}

func TestParseTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Unix(1767225600, 0).UTC(), parseTimestamp("1767225600", now))
	assert.Equal(t, time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), parseTimestamp("2026-02-01T08:00:00Z", now))
	assert.Equal(t, now, parseTimestamp("yesterday", now))
	assert.Equal(t, now, parseTimestamp("2030-01-01T00:00:00Z", now), "future values are clamped")
}
