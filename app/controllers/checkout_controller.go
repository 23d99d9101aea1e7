package controllers

import (
	"context"
	"errors"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/billing"
	"github.com/vidora/vidora-web/internal/pkg/checkout"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/flash"
	"github.com/vidora/vidora-web/internal/pkg/paysession"
	"github.com/vidora/vidora-web/internal/pkg/session"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
)

// PaymentCreator is satisfied by *billing.Service.
type PaymentCreator interface {
	CreatePayment(ctx context.Context, req billing.PaymentRequest) (*billing.CheckoutSession, error)
}

// SnapshotForgetter drops the last payment-return result of a session.
type SnapshotForgetter interface {
	Forget(ctx context.Context, sessionID string) error
}

type CheckoutController struct {
	plans       PlanCatalog
	gateways    checkout.GatewayLister
	payments    PaymentCreator
	paySessions paysession.Store
	snapshots   SnapshotForgetter
	testMode    bool
}

func NewCheckoutController(plans PlanCatalog, gateways checkout.GatewayLister, payments PaymentCreator, paySessions paysession.Store, snapshots SnapshotForgetter, testMode bool) *CheckoutController {
	return &CheckoutController{
		plans:       plans,
		gateways:    gateways,
		payments:    payments,
		paySessions: paySessions,
		snapshots:   snapshots,
		testMode:    testMode,
	}
}

var errNoPlan = errors.New("no plan selected")

// checkoutContext is the resolved plan and order of the current checkout.
type checkoutContext struct {
	Plan   models.Plan
	Intent checkout.Intent
	Order  checkout.Order
}

// resolve picks the plan from ?plan= or the intent stored by signup and the
// dashboard. A stored intent for the same plan keeps its payment type.
func (cc *CheckoutController) resolve(c *fiber.Ctx) (*checkoutContext, error) {
	var intent checkout.Intent
	stored := session.GetJSON(c, usercontext.KeyCheckoutIntent, &intent)

	if slug := strings.TrimSpace(c.Query("plan")); slug != "" {
		if !stored || intent.PlanSlug != slug {
			intent = checkout.Intent{PlanSlug: slug, Type: billing.PaymentTypeSubscriptionNew}
		}
	} else if !stored || intent.PlanSlug == "" {
		return nil, errNoPlan
	}

	ctx, cancel := backendContext(c)
	defer cancel()
	plans, err := activePlans(ctx, cc.plans)
	if err != nil {
		return nil, err
	}
	for _, p := range plans {
		if p.Slug == intent.PlanSlug {
			customer := usercontext.GetUserContext(c).Customer()
			return &checkoutContext{
				Plan:   p,
				Intent: intent,
				Order:  checkout.OrderFor(p, customer, intent),
			}, nil
		}
	}
	return nil, errNoPlan
}

func (cc *CheckoutController) resolveOrRedirect(c *fiber.Ctx) (*checkoutContext, error) {
	co, err := cc.resolve(c)
	switch {
	case err == nil:
		return co, nil
	case errors.Is(err, errNoPlan):
		return nil, flash.Info(c, constants.PricingRoute, "Please choose a plan first.")
	default:
		log.Errorf("[Checkout] Failed to load plans: %v", err)
		return nil, flash.Error(c, constants.PricingRoute, apiclient.UserMessage(err))
	}
}

// loadSelector fetches the catalog once for this page render.
func (cc *CheckoutController) loadSelector(c *fiber.Ctx, order checkout.Order) *checkout.Selector {
	ctx, cancel := backendContext(c)
	defer cancel()
	sel := checkout.NewSelector(order)
	// The error state is rendered, the error itself is logged by the selector
	_ = sel.Load(ctx, cc.gateways)
	return sel
}

// HandleCheckout renders the payment method cards.
func (cc *CheckoutController) HandleCheckout(c *fiber.Ctx) error {
	co, err := cc.resolveOrRedirect(c)
	if co == nil {
		return err
	}
	if co.Plan.IsFree() {
		return flash.Info(c, constants.DashboardRoute, "This plan is free, no payment needed.")
	}

	sel := cc.loadSelector(c, co.Order)
	return render(c, "pages/checkout", " | Checkout", fiber.Map{
		"Plan":      co.Plan,
		"Order":     co.Order,
		"State":     string(sel.State()),
		"Options":   sel.Options(),
		"NoMethods": checkout.NoMethodsMessage,
	})
}

// HandleCheckoutGateway mounts the provider form of one gateway.
func (cc *CheckoutController) HandleCheckoutGateway(c *fiber.Ctx) error {
	co, err := cc.resolveOrRedirect(c)
	if co == nil {
		return err
	}

	sel := cc.loadSelector(c, co.Order)
	if sel.State() == checkout.StateError {
		return render(c, "pages/checkout", " | Checkout", fiber.Map{
			"Plan":      co.Plan,
			"Order":     co.Order,
			"State":     string(sel.State()),
			"NoMethods": checkout.NoMethodsMessage,
		})
	}

	form, err := sel.Select(c.Params("id"))
	if err != nil {
		return flash.Error(c, checkoutURL(co.Plan.Slug), "This payment method is not available.")
	}

	fields, err := renderPartial(c, form.Partial, fiber.Map{"Form": form})
	if err != nil {
		log.Errorf("[Checkout] Failed to render %s: %v", form.Partial, err)
		fields = template.HTML("")
	}

	return render(c, "pages/checkout_provider", " | Checkout", fiber.Map{
		"Plan":           co.Plan,
		"Form":           form,
		"ProviderFields": fields,
		"BackURL":        checkoutURL(co.Plan.Slug),
	})
}

// HandleCheckoutPay creates the payment, marks the session as initiated and
// sends the browser to the provider.
func (cc *CheckoutController) HandleCheckoutPay(c *fiber.Ctx) error {
	co, err := cc.resolveOrRedirect(c)
	if co == nil {
		return err
	}
	back := checkoutURL(co.Plan.Slug)

	sel := cc.loadSelector(c, co.Order)
	if sel.State() == checkout.StateError {
		return flash.Error(c, back, checkout.NoMethodsMessage)
	}
	gatewayID := c.FormValue("gateway_id")
	form, err := sel.Select(gatewayID)
	if err != nil {
		return flash.Error(c, back, "This payment method is not available.")
	}
	if !form.Available {
		return flash.Error(c, back, "This payment method cannot be used for this amount or currency.")
	}

	req := co.Order.PaymentRequest(gatewayID, cc.testMode)
	req.Metadata = providerMetadata(c, form)

	ctx, cancel := backendContext(c)
	defer cancel()
	cs, err := cc.payments.CreatePayment(ctx, req)
	if err != nil {
		log.Errorf("[Checkout] Failed to create %s payment for customer %s: %v", form.Provider, co.Order.Customer.ID, err)
		msg := apiclient.UserMessage(err)
		if errors.Is(err, billing.ErrInvalidCheckoutURL) {
			msg = "The payment provider did not answer as expected. Please try another method."
		}
		return flash.Error(c, back, msg)
	}

	sid, err := session.ID(c)
	if err != nil {
		log.Errorf("[Checkout] No session to mark payment %s: %v", cs.PaymentID, err)
		return c.Redirect(cs.CheckoutURL, fiber.StatusSeeOther)
	}

	current, err := cc.paySessions.Load(ctx, sid)
	if err != nil {
		log.Warnf("[Checkout] Failed to load payment session: %v", err)
	}
	next, err := current.Initiate(form.Provider, cs.PaymentID, back)
	if err == nil {
		err = cc.paySessions.Save(ctx, sid, next)
	}
	if err != nil {
		// The return page still detects the provider by its referrer
		log.Errorf("[Checkout] Failed to mark payment %s as initiated: %v", cs.PaymentID, err)
	}
	if cc.snapshots != nil {
		if err := cc.snapshots.Forget(ctx, sid); err != nil {
			log.Warnf("[Checkout] Failed to clear previous payment result: %v", err)
		}
	}

	log.Infof("[Checkout] Redirecting customer %s to %s for payment %s", co.Order.Customer.ID, form.Provider, cs.PaymentID)
	return c.Redirect(cs.CheckoutURL, fiber.StatusSeeOther)
}

// providerMetadata adds the provider specific choices to a copy of the
// order metadata. Unknown select values are dropped.
func providerMetadata(c *fiber.Ctx, form *checkout.ProviderForm) billing.Metadata {
	meta := form.Metadata.Clone()
	for _, f := range form.Fields {
		v := strings.TrimSpace(c.FormValue(f.Name))
		if v == "" {
			continue
		}
		switch f.Type {
		case "select":
			if !contains(f.Options, v) {
				continue
			}
		case "checkbox":
			if !checkbox(v) {
				continue
			}
			v = "true"
		}
		meta[form.Provider.String()+"_"+f.Name] = v
	}
	return meta
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
