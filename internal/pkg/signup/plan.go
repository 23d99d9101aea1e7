// Package signup parses the entry parameters of the signup funnel: the
// chosen plan and the marketing attribution of the visit.
package signup

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/billing"
)

// PlanSelection is the plan a visitor arrived with. Exactly one of Slug
// or LegacyID identifies it.
type PlanSelection struct {
	Slug        string `json:"slug,omitempty"`
	LegacyID    string `json:"legacyId,omitempty"`
	Name        string `json:"name,omitempty"`
	Period      string `json:"period,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// legacyPlan is the JSON shape old marketing links put into ?plan=.
type legacyPlan struct {
	ID     json.RawMessage `json:"id"`
	Slug   string          `json:"slug"`
	Name   string          `json:"name"`
	Period string          `json:"period"`
}

// ParsePlanSelection reads plan (slug or legacy JSON), legacy plan_id and
// affiliation. A slug wins over plan_id.
func ParsePlanSelection(q url.Values) (PlanSelection, bool) {
	sel := PlanSelection{Affiliation: cleanParam(q.Get("affiliation"), 64)}

	raw := strings.TrimSpace(q.Get("plan"))
	switch {
	case strings.HasPrefix(raw, "{"):
		var lp legacyPlan
		if err := json.Unmarshal([]byte(raw), &lp); err == nil {
			sel.Slug = normalizeSlug(lp.Slug)
			sel.LegacyID = cleanParam(strings.Trim(string(lp.ID), `"`), 64)
			sel.Name = cleanParam(lp.Name, 100)
			if lp.Period != "" {
				sel.Period = billing.NormalizePeriod(lp.Period)
			}
		}
	case raw != "":
		sel.Slug = normalizeSlug(raw)
	}

	if sel.Slug == "" && sel.LegacyID == "" {
		sel.LegacyID = cleanParam(q.Get("plan_id"), 64)
	}
	if sel.Slug != "" {
		sel.LegacyID = ""
	}
	return sel, sel.Slug != "" || sel.LegacyID != ""
}

// Resolve finds the selected plan in the catalog.
func (s PlanSelection) Resolve(plans []models.Plan) (models.Plan, bool) {
	for _, p := range plans {
		if !p.IsActive {
			continue
		}
		if (s.Slug != "" && p.Slug == s.Slug) || (s.LegacyID != "" && p.ID == s.LegacyID) {
			return p, true
		}
	}
	return models.Plan{}, false
}

func normalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !slugPattern.MatchString(s) {
		return ""
	}
	return s
}

func cleanParam(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		s = s[:max]
	}
	return s
}
