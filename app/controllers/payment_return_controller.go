package controllers

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/internal/pkg/config"
	"github.com/vidora/vidora-web/internal/pkg/constants"
	"github.com/vidora/vidora-web/internal/pkg/paysession"
	"github.com/vidora/vidora-web/internal/pkg/reconcile"
	"github.com/vidora/vidora-web/internal/pkg/session"
	"github.com/vidora/vidora-web/internal/pkg/usercontext"
)

// ReturnMonitor is satisfied by *reconcile.Monitor.
type ReturnMonitor interface {
	Begin(sessionID, customerID string, trigger reconcile.Trigger) (reconcile.Snapshot, error)
	Cancel(ctx context.Context, sessionID string) (bool, error)
	Snapshot(ctx context.Context, sessionID string) (*reconcile.Snapshot, error)
	Forget(ctx context.Context, sessionID string) error
	Record(ctx context.Context, sessionID string, s reconcile.Snapshot) error
	Active(sessionID string) bool
}

type PaymentReturnController struct {
	monitor     ReturnMonitor
	paySessions paysession.Store
	cfg         config.Payment
}

func NewPaymentReturnController(monitor ReturnMonitor, paySessions paysession.Store, cfg config.Payment) *PaymentReturnController {
	return &PaymentReturnController{monitor: monitor, paySessions: paySessions, cfg: cfg}
}

// ReturnStatus is what the return page shows and polls.
type ReturnStatus struct {
	State       string `json:"state"`
	Message     string `json:"message"`
	Terminal    bool   `json:"terminal"`
	Attempts    int    `json:"attempts"`
	Errors      int    `json:"errors"`
	MaxAttempts int    `json:"maxAttempts"`
	PaymentID   string `json:"paymentId,omitempty"`
	RedirectIn  int    `json:"redirectIn,omitempty"`
	Destination string `json:"destination,omitempty"`
	RetryURL    string `json:"retryUrl,omitempty"`
	CheckURL    string `json:"checkUrl,omitempty"`
	SupportURL  string `json:"supportUrl,omitempty"`
	PlansURL    string `json:"plansUrl,omitempty"`
}

func (rc *PaymentReturnController) statusFor(snap *reconcile.Snapshot) ReturnStatus {
	if snap == nil {
		return ReturnStatus{
			State:    string(reconcile.StateIdle),
			Message:  reconcile.StateIdle.Message(),
			Terminal: true,
			PlansURL: rc.cfg.PlansURL,
		}
	}

	st := ReturnStatus{
		State:       string(snap.State),
		Message:     snap.Message,
		Terminal:    snap.State.Terminal(),
		Attempts:    snap.Attempts,
		Errors:      snap.Errors,
		MaxAttempts: rc.cfg.PendingAttempts,
		PaymentID:   snap.PaymentID,
	}
	if st.Message == "" {
		st.Message = snap.State.Message()
	}

	switch {
	case snap.State == reconcile.StateSuccess:
		st.RedirectIn = int(rc.cfg.Countdown.Seconds())
		st.Destination = constants.PaymentContinueRoute
	case snap.State.CanRetry():
		st.RetryURL = constants.PaymentRetryRoute
		st.SupportURL = rc.cfg.SupportURL
		st.PlansURL = rc.cfg.PlansURL
	case snap.State == reconcile.StateTimedOut, snap.State == reconcile.StateVerificationError:
		st.CheckURL = constants.PaymentReturnRoute
		st.SupportURL = rc.cfg.SupportURL
	}
	return st
}

func isOneShot(kind reconcile.TriggerKind) bool {
	switch kind {
	case reconcile.TriggerSuccess, reconcile.TriggerCancelled, reconcile.TriggerFailed:
		return true
	default:
		return false
	}
}

// HandlePaymentReturn is where providers send the browser back to. It
// starts a verification run when there is evidence of a payment, then
// drops the one-shot flags from the URL with a redirect.
func (rc *PaymentReturnController) HandlePaymentReturn(c *fiber.Ctx) error {
	ctx, cancel := backendContext(c)
	defer cancel()

	cleanURL := constants.PaymentReturnRoute
	stripped := false
	if u, err := url.Parse(c.OriginalURL()); err == nil {
		cleanURL, stripped = reconcile.StripOneShot(u)
	}

	sid, err := session.ID(c)
	if err != nil {
		log.Errorf("[Payment Return] No session: %v", err)
		return rc.renderReturn(c, &reconcile.Snapshot{State: reconcile.StateVerificationError})
	}

	ps, err := rc.paySessions.Load(ctx, sid)
	if err != nil {
		log.Warnf("[Payment Return] Failed to load payment session: %v", err)
	}

	trigger := reconcile.DetectTrigger(reconcile.Signals{
		Query:            queryValues(c),
		Referrer:         c.Get(fiber.HeaderReferer),
		SessionInitiated: ps.Initiated(),
	}, rc.cfg.ReferrerDomains)

	snap, err := rc.monitor.Snapshot(ctx, sid)
	if err != nil {
		log.Warnf("[Payment Return] Failed to load snapshot: %v", err)
	}

	customerID := usercontext.GetCustomerID(c)
	switch {
	case customerID == "":
		if trigger.Active() {
			// a payment may exist, we just cannot look it up
			log.Warnf("[Payment Return] Return without a customer in session %s", sid)
			snap = rc.recordError(ctx, sid, trigger)
		}
	case rc.monitor.Active(sid):
		// keep the running check, e.g. after the clean-URL redirect
	case isOneShot(trigger.Kind) || ps.Initiated() || (snap == nil && trigger.Active()):
		first, err := rc.monitor.Begin(sid, customerID, trigger)
		if err != nil {
			log.Errorf("[Payment Return] Could not start verification: %v", err)
			snap = rc.recordError(ctx, sid, trigger)
		} else {
			log.Infof("[Payment Return] Verifying payment for customer %s (trigger %s)", customerID, trigger.Kind)
			snap = &first
		}
	}

	if stripped {
		return c.Redirect(cleanURL, fiber.StatusSeeOther)
	}
	return rc.renderReturn(c, snap)
}

// recordError stores a verification_error snapshot for the session so the
// page after the redirect still shows it.
func (rc *PaymentReturnController) recordError(ctx context.Context, sid string, trigger reconcile.Trigger) *reconcile.Snapshot {
	snap := reconcile.Snapshot{State: reconcile.StateVerificationError, Trigger: trigger.Kind}
	if err := rc.monitor.Record(ctx, sid, snap); err != nil {
		log.Warnf("[Payment Return] Failed to save snapshot for session %s: %v", sid, err)
	}
	return &snap
}

func (rc *PaymentReturnController) renderReturn(c *fiber.Ctx, snap *reconcile.Snapshot) error {
	return render(c, "pages/payment_return", " | Payment", fiber.Map{
		"Status":    rc.statusFor(snap),
		"StatusURL": constants.PaymentStatusRoute,
		"LeaveURL":  constants.PaymentLeaveRoute,
		// the browser gives up polling after this many failed requests
		"PollFailureLimit": rc.cfg.ErrorAttempts,
		"PollRetryMs":      rc.cfg.ErrorDelay.Milliseconds(),
		"FailStatus":       rc.statusFor(&reconcile.Snapshot{State: reconcile.StateVerificationError}),
	})
}

// HandlePaymentStatus returns the current state of the session's run.
func (rc *PaymentReturnController) HandlePaymentStatus(c *fiber.Ctx) error {
	sid, err := session.ID(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(rc.statusFor(&reconcile.Snapshot{State: reconcile.StateVerificationError}))
	}
	snap, err := rc.monitor.Snapshot(c.UserContext(), sid)
	if err != nil {
		log.Warnf("[Payment Return] Failed to load snapshot: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(rc.statusFor(&reconcile.Snapshot{State: reconcile.StateVerificationError}))
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(rc.statusFor(snap))
}

// HandlePaymentLeave is called by the page's teardown beacon and stops the
// session's pending checks.
func (rc *PaymentReturnController) HandlePaymentLeave(c *fiber.Ctx) error {
	sid, err := session.ID(c)
	if err != nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	cancelled, err := rc.monitor.Cancel(c.UserContext(), sid)
	if err != nil {
		log.Warnf("[Payment Return] Failed to drop snapshot of session %s: %v", sid, err)
	}
	if cancelled {
		log.Debugf("[Payment Return] Stopped verification for session %s", sid)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandlePaymentContinue is the "continue now" action after a success.
func (rc *PaymentReturnController) HandlePaymentContinue(c *fiber.Ctx) error {
	if sid, err := session.ID(c); err == nil {
		if err := rc.monitor.Forget(c.UserContext(), sid); err != nil {
			log.Warnf("[Payment Return] Failed to drop snapshot: %v", err)
		}
	}
	return c.Redirect(rc.cfg.SuccessDestination, fiber.StatusSeeOther)
}

// HandlePaymentRetry sends the customer back to the checkout the failed
// payment started from.
func (rc *PaymentReturnController) HandlePaymentRetry(c *fiber.Ctx) error {
	target := rc.cfg.PlansURL
	sid, err := session.ID(c)
	if err != nil {
		return c.Redirect(target, fiber.StatusSeeOther)
	}

	ps, err := rc.paySessions.Load(c.UserContext(), sid)
	if err != nil {
		log.Warnf("[Payment Return] Failed to load payment session: %v", err)
	} else if ps.CanRetry() {
		target = ps.OriginURL
	}
	if err := rc.monitor.Forget(c.UserContext(), sid); err != nil {
		log.Warnf("[Payment Return] Failed to drop snapshot: %v", err)
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}
