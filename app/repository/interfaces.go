package repository

import (
	"context"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
)

// CrudRepository is the backend surface of one admin entity
type CrudRepository[T models.Record] interface {
	List(ctx context.Context, q apiclient.ListQuery) (*apiclient.Page[T], error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) (*T, error)
	Update(ctx context.Context, id string, item *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// ActivatableRepository is a CrudRepository of single-active records. The
// backend deactivates the previously active record on Activate.
type ActivatableRepository[T models.Record] interface {
	CrudRepository[T]
	Activate(ctx context.Context, id string) error
}

// Repositories contains all admin repositories
type Repositories struct {
	Contacts      CrudRepository[models.Contact]
	Plans         CrudRepository[models.Plan]
	Subscriptions CrudRepository[models.Subscription]
	Users         CrudRepository[models.User]
	SMTPConfigs   ActivatableRepository[models.SMTPConfig]
	Gateways      ActivatableRepository[models.PaymentGatewayConfig]
	Attributions  CrudRepository[models.MarketingAttribution]
}

// NewRepositories creates the REST backed repositories
func NewRepositories(client *apiclient.Client) *Repositories {
	return &Repositories{
		Contacts:      apiclient.NewResource[models.Contact](client, "contacts"),
		Plans:         apiclient.NewResource[models.Plan](client, "plans"),
		Subscriptions: apiclient.NewResource[models.Subscription](client, "subscriptions"),
		Users:         apiclient.NewResource[models.User](client, "users"),
		SMTPConfigs:   apiclient.NewResource[models.SMTPConfig](client, "smtp-configs"),
		Gateways:      apiclient.NewResource[models.PaymentGatewayConfig](client, "payment-gateways"),
		Attributions:  apiclient.NewResource[models.MarketingAttribution](client, "marketing-attribution"),
	}
}
