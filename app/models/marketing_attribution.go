package models

import "time"

// MarketingAttribution is one recorded landing with campaign parameters.
type MarketingAttribution struct {
	ID          string     `json:"id,omitempty"`
	SessionID   string     `json:"sessionId,omitempty"`
	UserID      string     `json:"userId,omitempty"`
	UTMSource   string     `json:"utmSource,omitempty"`
	UTMMedium   string     `json:"utmMedium,omitempty"`
	UTMCampaign string     `json:"utmCampaign,omitempty"`
	UTMContent  string     `json:"utmContent,omitempty"`
	UTMTerm     string     `json:"utmTerm,omitempty"`
	Referrer    string     `json:"referrer,omitempty"`
	CampaignID  string     `json:"campaignId,omitempty"`
	AffiliateID string     `json:"affiliateId,omitempty"`
	PromoCode   string     `json:"promoCode,omitempty"`
	PlanSlug    string     `json:"planSlug,omitempty"`
	Affiliation string     `json:"affiliation,omitempty"`
	LandingPage string     `json:"landingPage,omitempty"`
	ClientIP    string     `json:"clientIp,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func (m MarketingAttribution) GetID() string { return m.ID }

func (m MarketingAttribution) Label() string {
	if m.UTMCampaign != "" {
		return m.UTMSource + " / " + m.UTMCampaign
	}
	if m.UTMSource != "" {
		return m.UTMSource
	}
	return "attribution " + m.ID
}

// Validate accepts any record; attribution rows are read-only in admin.
func (m MarketingAttribution) Validate() error { return nil }
