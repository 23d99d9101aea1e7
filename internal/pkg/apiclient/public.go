package apiclient

import (
	"context"
	"net/http"

	"github.com/vidora/vidora-web/app/models"
)

// ListPlans returns the public plan catalog.
func (c *Client) ListPlans(ctx context.Context) ([]models.Plan, error) {
	const endpoint = "plans.list"
	env, err := c.do(ctx, request{endpoint: endpoint, method: http.MethodGet, path: "/api/plans"})
	if err != nil {
		return nil, err
	}
	var plans []models.Plan
	if err := decodeField(endpoint, env.Data, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// CurrentSubscription returns the customer's subscription. A customer
// without one gets an *APIError with NotFound() true.
func (c *Client) CurrentSubscription(ctx context.Context, customerID string) (*models.Subscription, error) {
	const endpoint = "subscriptions.current"
	env, err := c.do(ctx, request{
		endpoint:   endpoint,
		method:     http.MethodGet,
		path:       "/api/subscriptions/current",
		customerID: customerID,
	})
	if err != nil {
		return nil, err
	}
	var sub models.Subscription
	if err := decodeField(endpoint, env.Data, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

type registerBody struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PlanID      string `json:"planId,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

// RegisterUser creates the account and returns the new customer identity.
func (c *Client) RegisterUser(ctx context.Context, reg models.Registration) (*models.Customer, error) {
	const endpoint = "users.register"
	env, err := c.do(ctx, request{
		endpoint: endpoint,
		method:   http.MethodPost,
		path:     "/api/users/register",
		body: registerBody{
			Name:        reg.Name,
			Email:       reg.Email,
			Password:    reg.Password,
			PlanID:      reg.PlanID,
			Affiliation: reg.Affiliation,
		},
	})
	if err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := decodeField(endpoint, env.Data, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (c *Client) CreateContact(ctx context.Context, contact models.Contact) error {
	_, err := c.do(ctx, request{endpoint: "contacts.create", method: http.MethodPost, path: "/api/contacts", body: contact})
	return err
}

// TrackAttribution records one marketing landing.
func (c *Client) TrackAttribution(ctx context.Context, a models.MarketingAttribution) error {
	_, err := c.do(ctx, request{endpoint: "marketing.track", method: http.MethodPost, path: "/api/marketing/track", body: a})
	return err
}
