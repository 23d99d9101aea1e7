package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/app/repository"
	"github.com/vidora/vidora-web/internal/pkg/apiclient"
	"github.com/vidora/vidora-web/internal/pkg/jobqueue"
	"github.com/vidora/vidora-web/internal/pkg/reconcile"
)

const outcomeWindowDays = 7

type OutcomeReader interface {
	Outcomes(ctx context.Context, days int) (map[string]int64, error)
}

type JobStatsReader interface {
	Stats(ctx context.Context) (jobqueue.Stats, error)
}

type RunCounter interface {
	ActiveRuns() int
}

// AdminController renders the admin overview.
type AdminController struct {
	outcomes OutcomeReader
	jobs     JobStatsReader
	runs     RunCounter
	contacts repository.CrudRepository[models.Contact]
}

func NewAdminController(outcomes OutcomeReader, jobs JobStatsReader, runs RunCounter, contacts repository.CrudRepository[models.Contact]) *AdminController {
	return &AdminController{outcomes: outcomes, jobs: jobs, runs: runs, contacts: contacts}
}

// OutcomeCount is one row of the payment-return outcome table.
type OutcomeCount struct {
	State string
	Count int64
}

var outcomeOrder = []reconcile.State{
	reconcile.StateSuccess,
	reconcile.StateFailed,
	reconcile.StateCancelled,
	reconcile.StateExpired,
	reconcile.StateTimedOut,
	reconcile.StateVerificationError,
}

func orderedOutcomes(counts map[string]int64) []OutcomeCount {
	out := make([]OutcomeCount, 0, len(outcomeOrder))
	for _, s := range outcomeOrder {
		out = append(out, OutcomeCount{State: string(s), Count: counts[string(s)]})
	}
	return out
}

func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	ctx, cancel := backendContext(c)
	defer cancel()

	counts, err := ac.outcomes.Outcomes(ctx, outcomeWindowDays)
	if err != nil {
		log.Warnf("[Admin] Failed to read outcome counters: %v", err)
	}
	stats, err := ac.jobs.Stats(ctx)
	if err != nil {
		log.Warnf("[Admin] Failed to read job stats: %v", err)
	}

	var recent []models.Contact
	page, err := ac.contacts.List(ctx, apiclient.ListQuery{
		Limit:   5,
		Filters: map[string]string{"status": models.CONTACT_STATUS_NEW},
	})
	if err != nil {
		log.Warnf("[Admin] Failed to load new contacts: %v", err)
	} else {
		recent = page.Items
	}

	return renderAdmin(c, "admin/dashboard", " | Admin", fiber.Map{
		"Outcomes":    orderedOutcomes(counts),
		"OutcomeDays": outcomeWindowDays,
		"Jobs":        stats,
		"ActiveRuns":  ac.runs.ActiveRuns(),
		"Contacts":    recent,
	})
}
