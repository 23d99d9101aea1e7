package signup

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vidora/vidora-web/app/models"
)

// Attribution is the campaign context of a landing.
type Attribution struct {
	UTMSource   string    `json:"utmSource,omitempty"`
	UTMMedium   string    `json:"utmMedium,omitempty"`
	UTMCampaign string    `json:"utmCampaign,omitempty"`
	UTMContent  string    `json:"utmContent,omitempty"`
	UTMTerm     string    `json:"utmTerm,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	CampaignID  string    `json:"campaignId,omitempty"`
	AffiliateID string    `json:"affiliateId,omitempty"`
	PromoCode   string    `json:"promoCode,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ParseAttribution reads the campaign parameters. The referrer parameter
// wins over the Referer header. ok is false when the visit carries no
// campaign parameter at all.
func ParseAttribution(q url.Values, refererHeader string, now time.Time) (Attribution, bool) {
	a := Attribution{
		UTMSource:   cleanParam(q.Get("utm_source"), 100),
		UTMMedium:   cleanParam(q.Get("utm_medium"), 100),
		UTMCampaign: cleanParam(q.Get("utm_campaign"), 100),
		UTMContent:  cleanParam(q.Get("utm_content"), 100),
		UTMTerm:     cleanParam(q.Get("utm_term"), 100),
		Referrer:    cleanParam(q.Get("referrer"), 500),
		CampaignID:  cleanParam(q.Get("campaign_id"), 64),
		AffiliateID: cleanParam(q.Get("affiliate_id"), 64),
		PromoCode:   strings.ToUpper(cleanParam(q.Get("promo_code"), 32)),
		Timestamp:   parseTimestamp(q.Get("timestamp"), now),
	}

	ok := a.UTMSource != "" || a.UTMMedium != "" || a.UTMCampaign != "" ||
		a.UTMContent != "" || a.UTMTerm != "" || a.Referrer != "" ||
		a.CampaignID != "" || a.AffiliateID != "" || a.PromoCode != ""

	if a.Referrer == "" {
		a.Referrer = cleanParam(refererHeader, 500)
	}
	return a, ok
}

// parseTimestamp accepts unix seconds, unix milliseconds or RFC 3339. A
// missing, unreadable or future value falls back to now.
func parseTimestamp(raw string, now time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now
	}
	var ts time.Time
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			ts = time.UnixMilli(n)
		} else {
			ts = time.Unix(n, 0)
		}
	} else if t, err := time.Parse(time.RFC3339, raw); err == nil {
		ts = t
	} else {
		return now
	}
	if ts.After(now) {
		return now
	}
	return ts.UTC()
}

// Record turns the attribution into the backend record.
func (a Attribution) Record(sessionID, landingPage, clientIP string, plan PlanSelection) models.MarketingAttribution {
	ts := a.Timestamp
	return models.MarketingAttribution{
		SessionID:   sessionID,
		UTMSource:   a.UTMSource,
		UTMMedium:   a.UTMMedium,
		UTMCampaign: a.UTMCampaign,
		UTMContent:  a.UTMContent,
		UTMTerm:     a.UTMTerm,
		Referrer:    a.Referrer,
		CampaignID:  a.CampaignID,
		AffiliateID: a.AffiliateID,
		PromoCode:   a.PromoCode,
		PlanSlug:    plan.Slug,
		Affiliation: plan.Affiliation,
		LandingPage: landingPage,
		ClientIP:    clientIP,
		Timestamp:   &ts,
	}
}
