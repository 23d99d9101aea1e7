package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SUBSCRIPTION_STATUS_ACTIVE    = "active"
	SUBSCRIPTION_STATUS_PENDING   = "pending"
	SUBSCRIPTION_STATUS_PAST_DUE  = "past_due"
	SUBSCRIPTION_STATUS_CANCELLED = "cancelled"
	SUBSCRIPTION_STATUS_EXPIRED   = "expired"
)

var SubscriptionStatuses = []string{
	SUBSCRIPTION_STATUS_ACTIVE,
	SUBSCRIPTION_STATUS_PENDING,
	SUBSCRIPTION_STATUS_PAST_DUE,
	SUBSCRIPTION_STATUS_CANCELLED,
	SUBSCRIPTION_STATUS_EXPIRED,
}

// Subscription is the client view of a customer's subscription.
type Subscription struct {
	ID        string          `json:"id,omitempty"`
	UserID    string          `json:"userId" validate:"required"`
	UserEmail string          `json:"userEmail,omitempty"`
	UserName  string          `json:"userName,omitempty"`
	PlanID    string          `json:"planId" validate:"required"`
	PlanName  string          `json:"planName,omitempty"`
	PlanSlug  string          `json:"planSlug,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Currency  string          `json:"currency" validate:"omitempty,len=3"`
	Period    string          `json:"period" validate:"omitempty,oneof=monthly yearly"`
	Status    string          `json:"status" validate:"oneof=active pending past_due cancelled expired"`
	StartDate *time.Time      `json:"startDate,omitempty"`
	EndDate   *time.Time      `json:"endDate,omitempty"`
	AutoRenew bool            `json:"autoRenew"`
}

func (s Subscription) GetID() string { return s.ID }

func (s Subscription) Label() string {
	if s.UserEmail != "" {
		return s.PlanName + " for " + s.UserEmail
	}
	return s.PlanName + " (" + s.ID + ")"
}

func (s Subscription) Validate() error {
	return validate.Struct(s)
}

func (s Subscription) IsActive() bool {
	return s.Status == SUBSCRIPTION_STATUS_ACTIVE || s.Status == SUBSCRIPTION_STATUS_PAST_DUE
}

// DaysLeft returns the whole days until EndDate, 0 when already past or unknown.
func (s Subscription) DaysLeft(now time.Time) int {
	if s.EndDate == nil || !s.EndDate.After(now) {
		return 0
	}
	return int(s.EndDate.Sub(now).Hours() / 24)
}

// Renewable is true when the customer may pay for the next period now.
func (s Subscription) Renewable(now time.Time) bool {
	switch s.Status {
	case SUBSCRIPTION_STATUS_EXPIRED, SUBSCRIPTION_STATUS_PAST_DUE:
		return true
	case SUBSCRIPTION_STATUS_ACTIVE:
		return !s.AutoRenew && s.DaysLeft(now) <= 14
	default:
		return false
	}
}
