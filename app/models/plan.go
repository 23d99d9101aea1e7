package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	PERIOD_MONTHLY = "monthly"
	PERIOD_YEARLY  = "yearly"
)

// Plan is a purchasable subscription plan.
type Plan struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name" validate:"required,min=2,max=100"`
	Slug        string          `json:"slug" validate:"required,min=2,max=100"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	Period      string          `json:"period" validate:"oneof=monthly yearly"`
	Features    []string        `json:"features"`
	MaxStreams  int             `json:"maxStreams" validate:"gte=1,lte=50"`
	MaxQuality  string          `json:"maxQuality" validate:"omitempty,oneof=sd hd fhd uhd"`
	TrialDays   int             `json:"trialDays" validate:"gte=0,lte=90"`
	IsActive    bool            `json:"isActive"`
	IsPopular   bool            `json:"isPopular"`
	SortOrder   int             `json:"sortOrder"`
}

func (p Plan) GetID() string { return p.ID }

func (p Plan) Label() string { return p.Name }

func (p Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return errNegativePrice
	}
	return nil
}

// PriceLabel renders e.g. "9.99 EUR / month".
func (p Plan) PriceLabel() string {
	unit := "month"
	if p.Period == PERIOD_YEARLY {
		unit = "year"
	}
	return p.Price.StringFixed(2) + " " + strings.ToUpper(p.Currency) + " / " + unit
}

// IsFree reports a zero-priced plan, which skips the payment step.
func (p Plan) IsFree() bool {
	return p.Price.IsZero()
}
