// Package checkout drives the payment method selection step.
//
// A Selector goes loading -> error | choosing -> providerSelected. Back
// returns from providerSelected to choosing and drops the provider form.
// The only backend call is the gateway catalog fetch in Load.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/vidora/vidora-web/internal/pkg/billing"
)

type State string

const (
	StateLoading          State = "loading"
	StateError            State = "error"
	StateChoosing         State = "choosing"
	StateProviderSelected State = "providerSelected"
)

var (
	ErrUnknownGateway = errors.New("unknown payment method")
	ErrInvalidState   = errors.New("invalid selector transition")
)

// NoMethodsMessage is shown in the error state.
const NoMethodsMessage = "No payment methods are available right now. Please reload the page or contact support."

// GatewayLister is satisfied by *billing.Service.
type GatewayLister interface {
	ListGateways(ctx context.Context) ([]billing.Gateway, error)
}

// Option is one gateway card.
type Option struct {
	Gateway billing.Gateway
	Fee     decimal.Decimal
	// Available is false when the order amount or currency is outside the
	// gateway's limits.
	Available bool
}

type Selector struct {
	state    State
	order    Order
	gateways []billing.Gateway
	form     *ProviderForm
	err      error
}

func NewSelector(order Order) *Selector {
	return &Selector{state: StateLoading, order: order}
}

func (s *Selector) State() State { return s.state }

func (s *Selector) Order() Order { return s.order }

// Err is the load error in the error state.
func (s *Selector) Err() error { return s.err }

// Form is the mounted provider form, nil unless a provider is selected.
func (s *Selector) Form() *ProviderForm { return s.form }

// Load fetches the catalog once. A failure or an empty catalog is terminal
// for this selector; there is no automatic retry.
func (s *Selector) Load(ctx context.Context, lister GatewayLister) error {
	if s.state != StateLoading {
		return fmt.Errorf("%w: load from %s", ErrInvalidState, s.state)
	}

	gateways, err := lister.ListGateways(ctx)
	if err == nil && len(gateways) == 0 {
		err = billing.ErrNoGateways
	}
	if err != nil {
		log.Warnf("[Checkout] Gateway catalog unavailable: %v", err)
		s.state = StateError
		s.err = err
		return err
	}

	s.gateways = gateways
	s.state = StateChoosing
	return nil
}

// Options lists the gateway cards in catalog order.
func (s *Selector) Options() []Option {
	out := make([]Option, 0, len(s.gateways))
	for _, g := range s.gateways {
		out = append(out, Option{
			Gateway:   g,
			Fee:       g.FeeFor(s.order.Amount),
			Available: g.Accepts(s.order.Amount, s.order.Currency),
		})
	}
	return out
}

// Select mounts the provider form of gatewayID.
func (s *Selector) Select(gatewayID string) (*ProviderForm, error) {
	if s.state != StateChoosing {
		return nil, fmt.Errorf("%w: select from %s", ErrInvalidState, s.state)
	}
	for _, g := range s.gateways {
		if g.ID != gatewayID {
			continue
		}
		form := newProviderForm(g, s.order)
		s.form = &form
		s.state = StateProviderSelected
		return s.form, nil
	}
	return nil, ErrUnknownGateway
}

// Back discards the provider form and returns to choosing.
func (s *Selector) Back() error {
	if s.state != StateProviderSelected {
		return fmt.Errorf("%w: back from %s", ErrInvalidState, s.state)
	}
	s.form = nil
	s.state = StateChoosing
	return nil
}
