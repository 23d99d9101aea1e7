package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/billing"
	"github.com/vidora/vidora-web/internal/pkg/checkout"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/entitlements"
	"github.com/vidora/vidora-web/internal/pkg/flash"
	"github.com/vidora/vidora-web/internal/pkg/session"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
)

// SubscriptionReader returns the current subscription of a customer.
type SubscriptionReader interface {
	CurrentSubscription(ctx context.Context, customerID string) (*models.Subscription, error)
}

type DashboardController struct {
	subscriptions SubscriptionReader
	plans         PlanCatalog
	now           func() time.Time
}

func NewDashboardController(subscriptions SubscriptionReader, plans PlanCatalog) *DashboardController {
	return &DashboardController{subscriptions: subscriptions, plans: plans, now: time.Now}
}

// current loads the subscription; nil without error means none yet.
func (dc *DashboardController) current(c *fiber.Ctx) (*models.Subscription, error) {
	ctx, cancel := backendContext(c)
	defer cancel()
	sub, err := dc.subscriptions.CurrentSubscription(ctx, usercontext.GetCustomerID(c))
	if apiclient.IsNotFound(err) {
		return nil, nil
	}
	return sub, err
}

func (dc *DashboardController) HandleDashboard(c *fiber.Ctx) error {
	sub, err := dc.current(c)
	data := fiber.Map{"Subscription": sub}
	if err != nil {
		log.Errorf("[Dashboard] Failed to load subscription of %s: %v", usercontext.GetCustomerID(c), err)
		data["Error"] = apiclient.UserMessage(err)
	}

	if sub != nil {
		now := dc.now()
		data["DaysLeft"] = sub.DaysLeft(now)
		data["Renewable"] = sub.Renewable(now)

		ctx, cancel := backendContext(c)
		defer cancel()
		if plans, err := activePlans(ctx, dc.plans); err == nil {
			data["Upgrades"] = upgradesFor(sub, plans)
		}
	}
	return render(c, "pages/dashboard", " | Dashboard", data)
}

// UpgradeOption is a bigger plan with what it adds over the current one.
type UpgradeOption struct {
	Plan  models.Plan
	Gains []string
}

func upgradesFor(sub *models.Subscription, plans []models.Plan) []UpgradeOption {
	current := entitlements.For(models.Plan{})
	for _, p := range plans {
		if p.Slug == sub.PlanSlug {
			current = entitlements.For(p)
			break
		}
	}
	out := make([]UpgradeOption, 0, len(plans))
	for _, p := range plans {
		if p.Slug != sub.PlanSlug && p.Price.GreaterThan(sub.Price) {
			out = append(out, UpgradeOption{Plan: p, Gains: entitlements.Gains(current, entitlements.For(p))})
		}
	}
	return out
}

// HandleUpgrade enters checkout for a bigger plan.
func (dc *DashboardController) HandleUpgrade(c *fiber.Ctx) error {
	slug := strings.TrimSpace(c.Query("plan"))
	if slug == "" {
		return flash.Error(c, constants.DashboardRoute, "Please choose the plan to upgrade to.")
	}
	sub, err := dc.current(c)
	if err != nil {
		return flash.Error(c, constants.DashboardRoute, apiclient.UserMessage(err))
	}
	if sub == nil || !sub.IsActive() {
		// Nothing to upgrade, this is a new subscription
		return dc.enterCheckout(c, checkout.Intent{PlanSlug: slug, Type: billing.PaymentTypeSubscriptionNew})
	}
	return dc.enterCheckout(c, checkout.Intent{
		PlanSlug:       slug,
		Type:           billing.PaymentTypeSubscriptionUpgrade,
		SubscriptionID: sub.ID,
	})
}

// HandleRenew enters checkout for the next period of the current plan.
func (dc *DashboardController) HandleRenew(c *fiber.Ctx) error {
	sub, err := dc.current(c)
	if err != nil {
		return flash.Error(c, constants.DashboardRoute, apiclient.UserMessage(err))
	}
	if sub == nil || sub.PlanSlug == "" {
		return flash.Info(c, constants.PricingRoute, "You have no subscription to renew yet.")
	}
	if !sub.Renewable(dc.now()) {
		return flash.Info(c, constants.DashboardRoute, "Your subscription does not need a renewal right now.")
	}
	return dc.enterCheckout(c, checkout.Intent{
		PlanSlug:       sub.PlanSlug,
		Type:           billing.PaymentTypeSubscriptionRenewal,
		SubscriptionID: sub.ID,
	})
}

func (dc *DashboardController) enterCheckout(c *fiber.Ctx, intent checkout.Intent) error {
	if err := session.SetJSON(c, usercontext.KeyCheckoutIntent, intent); err != nil {
		log.Errorf("[Dashboard] Failed to store checkout intent: %v", err)
		return flash.Error(c, constants.DashboardRoute, "Please try again.")
	}
	return c.Redirect(checkoutURL(intent.PlanSlug), fiber.StatusSeeOther)
}
