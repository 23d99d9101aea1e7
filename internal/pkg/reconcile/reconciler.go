package reconcile

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/internal/pkg/billing"
	"github.com/vidora/vidora-web/internal/pkg/config"
	"github.com/vidora/vidora-web/internal/pkg/metrics"
)

// PaymentReader returns the most recent payment of a customer.
type PaymentReader interface {
	LatestPayment(ctx context.Context, customerID string) (*billing.Payment, error)
}

// UpgradeCompleter finishes a subscription upgrade or renewal.
type UpgradeCompleter interface {
	CompleteUpgrade(ctx context.Context, paymentID string) error
}

// Policy bounds a run.
type Policy struct {
	PendingDelay    time.Duration
	PendingAttempts int
	ErrorDelay      time.Duration
	ErrorAttempts   int
}

func PolicyFrom(cfg config.Payment) Policy {
	return Policy{
		PendingDelay:    cfg.PendingDelay,
		PendingAttempts: cfg.PendingAttempts,
		ErrorDelay:      cfg.ErrorDelay,
		ErrorAttempts:   cfg.ErrorAttempts,
	}
}

// Reconciler runs the verification loop for one customer at a time. It
// holds no per-run state.
type Reconciler struct {
	payments PaymentReader
	upgrades UpgradeCompleter
	policy   Policy

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewReconciler(payments PaymentReader, upgrades UpgradeCompleter, policy Policy) *Reconciler {
	def := PolicyFrom(config.DefaultPayment())
	if policy.PendingAttempts <= 0 {
		policy.PendingAttempts = def.PendingAttempts
	}
	if policy.ErrorAttempts <= 0 {
		policy.ErrorAttempts = def.ErrorAttempts
	}
	if policy.PendingDelay <= 0 {
		policy.PendingDelay = def.PendingDelay
	}
	if policy.ErrorDelay <= 0 {
		policy.ErrorDelay = def.ErrorDelay
	}
	return &Reconciler{
		payments: payments,
		upgrades: upgrades,
		policy:   policy,
		sleep:    sleepCtx,
		now:      time.Now,
	}
}

func (r *Reconciler) Policy() Policy {
	return r.policy
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run checks the latest payment until it is terminal or a bound is hit.
// Pending reads and failed reads have separate counters: the run stops
// after PendingAttempts pending reads (timed_out) or ErrorAttempts failed
// reads (verification_error). Neither counter resets during a run.
// observe is called on every state change.
//
// The returned error is only ever the context's error; the run's result is
// the snapshot.
func (r *Reconciler) Run(ctx context.Context, customerID string, trigger Trigger, observe func(Snapshot)) (Snapshot, error) {
	if observe == nil {
		observe = func(Snapshot) {}
	}
	snap := Snapshot{
		State:     StateVerifying,
		Trigger:   trigger.Kind,
		StartedAt: r.now(),
	}
	if trigger.Provider != billing.ProviderUnknown {
		snap.Provider = trigger.Provider.String()
	}
	r.emit(&snap, observe)

	for {
		payment, err := r.payments.LatestPayment(ctx, customerID)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return snap, ctxErr
		}

		if err != nil {
			snap.Errors++
			metrics.ReconcileChecks.WithLabelValues("error").Inc()
			log.Warnf("[Reconcile] Status check %d/%d for customer %s failed: %v", snap.Errors, r.policy.ErrorAttempts, customerID, err)
			if snap.Errors >= r.policy.ErrorAttempts {
				snap.State = StateVerificationError
				r.emit(&snap, observe)
				return snap, nil
			}
			r.emit(&snap, observe)
			if err := r.sleep(ctx, r.policy.ErrorDelay); err != nil {
				return snap, err
			}
			continue
		}

		outcome := billing.Classify(*payment)
		snap.PaymentID = payment.ID
		if payment.Provider != "" {
			snap.Provider = payment.Provider
		}
		snap.Outcome = outcome

		if !outcome.Terminal() {
			snap.Attempts++
			metrics.ReconcileChecks.WithLabelValues("pending").Inc()
			if snap.Attempts >= r.policy.PendingAttempts {
				log.Infof("[Reconcile] Payment %s still pending after %d checks", payment.ID, snap.Attempts)
				snap.State = StateTimedOut
				r.emit(&snap, observe)
				return snap, nil
			}
			snap.State = StatePolling
			r.emit(&snap, observe)
			if err := r.sleep(ctx, r.policy.PendingDelay); err != nil {
				return snap, err
			}
			continue
		}

		metrics.ReconcileChecks.WithLabelValues("terminal").Inc()
		if outcome == billing.OutcomeSucceeded && payment.Metadata.CompletesSubscription() {
			r.completeUpgrade(ctx, payment)
		}
		snap.State = stateFor(outcome)
		r.emit(&snap, observe)
		return snap, nil
	}
}

// completeUpgrade never fails the run; the backend converges on its own.
func (r *Reconciler) completeUpgrade(ctx context.Context, p *billing.Payment) {
	if r.upgrades == nil {
		return
	}
	if err := r.upgrades.CompleteUpgrade(ctx, p.ID); err != nil {
		metrics.UpgradeCompletions.WithLabelValues("error").Inc()
		log.Errorf("[Reconcile] Completing %s for payment %s failed: %v", p.Metadata.Type(), p.ID, err)
		return
	}
	metrics.UpgradeCompletions.WithLabelValues("ok").Inc()
	log.Infof("[Reconcile] Completed %s for payment %s", p.Metadata.Type(), p.ID)
}

func (r *Reconciler) emit(snap *Snapshot, observe func(Snapshot)) {
	snap.UpdatedAt = r.now()
	snap.Message = snap.State.Message()
	observe(*snap)
}
