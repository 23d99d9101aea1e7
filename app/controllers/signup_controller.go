package controllers

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/billing"
	"github.com/vidora/vidora-web/internal/pkg/checkout"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/jobqueue"
	"github.com/vidora/vidora-web/internal/pkg/session"
	"github.com/vidora/vidora-web/internal/pkg/signup"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
)

// Registrar creates customer accounts.
type Registrar interface {
	RegisterUser(ctx context.Context, reg models.Registration) (*models.Customer, error)
}

// CaptchaVerifier is satisfied by *hcaptcha.Verifier.
type CaptchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

type SignupController struct {
	plans     PlanCatalog
	registrar Registrar
	captcha   CaptchaVerifier
	jobs      jobqueue.Enqueuer
	siteKey   string
	now       func() time.Time
}

func NewSignupController(plans PlanCatalog, registrar Registrar, captcha CaptchaVerifier, siteKey string, jobs jobqueue.Enqueuer) *SignupController {
	return &SignupController{
		plans:     plans,
		registrar: registrar,
		captcha:   captcha,
		jobs:      jobs,
		siteKey:   siteKey,
		now:       time.Now,
	}
}

// HandleSignup keeps the plan and campaign of the visit and shows the form.
func (sc *SignupController) HandleSignup(c *fiber.Ctx) error {
	q := queryValues(c)

	sel, hasPlan := signup.ParsePlanSelection(q)
	if hasPlan {
		if err := session.SetJSON(c, usercontext.KeyPlanSelection, sel); err != nil {
			log.Warnf("[Signup] Failed to store plan selection: %v", err)
		}
	} else {
		session.GetJSON(c, usercontext.KeyPlanSelection, &sel)
	}

	sc.trackAttribution(c, q, sel)

	ctx, cancel := backendContext(c)
	defer cancel()
	plans, err := activePlans(ctx, sc.plans)
	if err != nil {
		log.Warnf("[Signup] Failed to load plans: %v", err)
	}
	selected, _ := sel.Resolve(plans)

	if isLoggedIn(c) && selected.Slug != "" {
		return c.Redirect(checkoutURL(selected.Slug), fiber.StatusSeeOther)
	}

	return sc.renderForm(c, models.Registration{}, plans, selected, nil)
}

// trackAttribution records the campaign of the first landing in this
// session. Delivery happens in the job queue.
func (sc *SignupController) trackAttribution(c *fiber.Ctx, q url.Values, sel signup.PlanSelection) {
	attribution, ok := signup.ParseAttribution(q, c.Get(fiber.HeaderReferer), sc.now())
	if !ok {
		return
	}
	var existing signup.Attribution
	if session.GetJSON(c, usercontext.KeyAttribution, &existing) {
		return
	}
	if err := session.SetJSON(c, usercontext.KeyAttribution, attribution); err != nil {
		log.Warnf("[Signup] Failed to store attribution: %v", err)
	}

	sid, err := session.ID(c)
	if err != nil {
		log.Warnf("[Signup] No session for attribution: %v", err)
		return
	}
	if sc.jobs == nil {
		return
	}
	record := attribution.Record(sid, c.Path(), ClientIP(c), sel)
	record.UserID = usercontext.GetCustomerID(c)
	jobqueue.TrackAttribution(context.WithoutCancel(c.UserContext()), sc.jobs, record)
}

func (sc *SignupController) renderForm(c *fiber.Ctx, reg models.Registration, plans []models.Plan, selected models.Plan, errs map[string]string) error {
	return render(c, "pages/signup", " | Sign up", fiber.Map{
		"Registration": reg,
		"Plans":        plans,
		"Selected":     selected,
		"Errors":       errs,
		"CaptchaOn":    sc.captcha != nil && sc.captcha.Enabled(),
		"SiteKey":      sc.siteKey,
		"Next":         safeNext(c.Query("next"), ""),
	})
}

// HandleSignupSubmit registers the account and continues to checkout.
func (sc *SignupController) HandleSignupSubmit(c *fiber.Ctx) error {
	reg := models.Registration{
		Name:            strings.TrimSpace(c.FormValue("name")),
		Email:           strings.TrimSpace(c.FormValue("email")),
		Password:        c.FormValue("password"),
		PasswordConfirm: c.FormValue("password_confirm"),
		AcceptTerms:     checkbox(c.FormValue("accept_terms")),
	}

	ctx, cancel := backendContext(c)
	defer cancel()

	plans, err := activePlans(ctx, sc.plans)
	if err != nil {
		log.Warnf("[Signup] Failed to load plans: %v", err)
	}

	var sel signup.PlanSelection
	session.GetJSON(c, usercontext.KeyPlanSelection, &sel)
	if slug := strings.TrimSpace(c.FormValue("plan")); slug != "" {
		sel.Slug, sel.LegacyID = slug, ""
	}
	selected, hasPlan := sel.Resolve(plans)
	if hasPlan {
		reg.PlanID = selected.ID
	}
	reg.Affiliation = sel.Affiliation

	// Never echo the password back into the form
	echo := reg
	echo.Password, echo.PasswordConfirm = "", ""

	if errs := models.FieldErrors(reg.Validate()); errs != nil {
		c.Status(fiber.StatusUnprocessableEntity)
		return sc.renderForm(c, echo, plans, selected, errs)
	}

	if sc.captcha != nil && sc.captcha.Enabled() {
		ok, err := sc.captcha.Verify(ctx, c.FormValue("h-captcha-response"), ClientIP(c))
		if err != nil || !ok {
			if err != nil {
				log.Warnf("[Signup] Captcha verification failed: %v", err)
			}
			c.Status(fiber.StatusUnprocessableEntity)
			return sc.renderForm(c, echo, plans, selected, map[string]string{"_": "Please complete the captcha."})
		}
	}

	customer, err := sc.registrar.RegisterUser(ctx, reg)
	if err != nil {
		log.Errorf("[Signup] Registration failed for %s: %v", reg.Email, err)
		status := fiber.StatusBadGateway
		if apiclient.IsBusiness(err) {
			status = fiber.StatusUnprocessableEntity
		}
		c.Status(status)
		return sc.renderForm(c, echo, plans, selected, map[string]string{"_": apiclient.UserMessage(err)})
	}
	if customer.Email == "" {
		customer.Email = reg.Email
	}
	if customer.Name == "" {
		customer.Name = reg.Name
	}

	if err := session.SetJSON(c, usercontext.KeyCustomer, customer); err != nil {
		log.Errorf("[Signup] Failed to store customer in session: %v", err)
		c.Status(fiber.StatusInternalServerError)
		return sc.renderForm(c, echo, plans, selected, map[string]string{"_": "Your account was created but we could not sign you in. Please try again."})
	}
	log.Infof("[Signup] Registered customer %s", customer.ID)

	if !hasPlan {
		return c.Redirect(safeNext(c.FormValue("next"), constants.PricingRoute), fiber.StatusSeeOther)
	}

	intent := checkout.Intent{PlanSlug: selected.Slug, Type: billing.PaymentTypeSubscriptionNew}
	if err := session.SetJSON(c, usercontext.KeyCheckoutIntent, intent); err != nil {
		log.Warnf("[Signup] Failed to store checkout intent: %v", err)
	}
	return c.Redirect(checkoutURL(selected.Slug), fiber.StatusSeeOther)
}

func checkoutURL(planSlug string) string {
	return constants.CheckoutRoute + "?plan=" + url.QueryEscape(planSlug)
}

func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

// queryValues returns the parsed query string of the request.
func queryValues(c *fiber.Ctx) url.Values {
	q, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return url.Values{}
	}
	return q
}
