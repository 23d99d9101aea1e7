package controllers

import (
	"context"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/flash"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
	"github.com/vidora/vidora-web/internal/pkg/viewmodel"
)

// PlanCatalog lists the public plans.
type PlanCatalog interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
}

// ContactSender forwards contact form messages.
type ContactSender interface {
	CreateContact(ctx context.Context, contact models.Contact) error
}

// PublicController serves the marketing pages
type PublicController struct {
	plans    PlanCatalog
	contacts ContactSender
}

func NewPublicController(plans PlanCatalog, contacts ContactSender) *PublicController {
	return &PublicController{plans: plans, contacts: contacts}
}

// activePlans returns the active plans in display order.
func activePlans(ctx context.Context, catalog PlanCatalog) ([]models.Plan, error) {
	plans, err := catalog.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Plan, 0, len(plans))
	for _, p := range plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (pc *PublicController) HandleHome(c *fiber.Ctx) error {
	ctx, cancel := backendContext(c)
	defer cancel()

	plans, err := activePlans(ctx, pc.plans)
	if err != nil {
		// The landing page still works without the plan teaser
		log.Warnf("[Public] Failed to load plans for home page: %v", err)
	}

	return render(c, "pages/home", "", fiber.Map{
		"Plans": plans,
	}, &viewmodel.OpenGraph{
		Title:       "Vidora - Stream your videos everywhere",
		Description: "Host, stream and share your videos with Vidora.",
		Image:       "/img/vidora-og.png",
		URL:         constants.PublicRoute,
	})
}

func (pc *PublicController) HandlePricing(c *fiber.Ctx) error {
	ctx, cancel := backendContext(c)
	defer cancel()

	plans, err := activePlans(ctx, pc.plans)
	data := fiber.Map{"Plans": plans}
	if err != nil {
		log.Errorf("[Public] Failed to load plans: %v", err)
		data["Error"] = apiclient.UserMessage(err)
	}
	return render(c, "pages/pricing", " | Pricing", data, &viewmodel.OpenGraph{
		Title:       "Pricing - Vidora",
		Description: "Plans for every audience size.",
		Image:       "/img/vidora-og.png",
		URL:         constants.PricingRoute,
	})
}

func (pc *PublicController) HandleContact(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	return render(c, "pages/contact", " | Contact", fiber.Map{
		"Contact": models.Contact{Name: userCtx.Name, Email: userCtx.Email},
	})
}

// HandleContactSubmit validates the form, forwards it and redirects back.
func (pc *PublicController) HandleContactSubmit(c *fiber.Ctx) error {
	contact := models.Contact{
		Name:    strings.TrimSpace(c.FormValue("name")),
		Email:   strings.TrimSpace(c.FormValue("email")),
		Phone:   strings.TrimSpace(c.FormValue("phone")),
		Company: strings.TrimSpace(c.FormValue("company")),
		Subject: strings.TrimSpace(c.FormValue("subject")),
		Message: strings.TrimSpace(c.FormValue("message")),
		Status:  models.CONTACT_STATUS_NEW,
		Source:  "website",
	}

	if errs := models.FieldErrors(contact.Validate()); errs != nil {
		c.Status(fiber.StatusUnprocessableEntity)
		return render(c, "pages/contact", " | Contact", fiber.Map{
			"Contact": contact,
			"Errors":  errs,
		})
	}

	ctx, cancel := backendContext(c)
	defer cancel()
	if err := pc.contacts.CreateContact(ctx, contact); err != nil {
		log.Errorf("[Public] Failed to send contact message: %v", err)
		flash.Set(c, fiber.Map{"type": "error", "message": apiclient.UserMessage(err)})
		c.Status(fiber.StatusBadGateway)
		return render(c, "pages/contact", " | Contact", fiber.Map{"Contact": contact})
	}

	return flash.Success(c, constants.ContactRoute, "Thanks for your message. We will get back to you soon.")
}

// HandleHealthz reports liveness.
func HandleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
