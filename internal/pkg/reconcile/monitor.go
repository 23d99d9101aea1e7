package reconcile

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/vidora/vidora-web/internal/pkg/billing"
	"github.com/vidora/vidora-web/internal/pkg/metrics"
)

var ErrNotRunning = errors.New("reconcile monitor is not running")

// OutcomeRecorder counts final states for the admin dashboard.
type OutcomeRecorder interface {
	AddOutcome(ctx context.Context, state string) error
}

// SessionResolver writes a final payment outcome to the session's payment
// markers.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string, outcome billing.Outcome) error
}

// Monitor owns one reconciliation goroutine per browser session. Starting
// a new run for a session cancels the previous one, and only the current
// run may write the session's snapshot.
type Monitor struct {
	reconciler *Reconciler
	snapshots  SnapshotStore
	outcomes   OutcomeRecorder
	resolver   SessionResolver

	mu        sync.Mutex
	runs      map[string]*run
	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup
	running   bool
}

type run struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a stopped monitor. outcomes may be nil.
func NewMonitor(r *Reconciler, snapshots SnapshotStore, outcomes OutcomeRecorder) *Monitor {
	return &Monitor{
		reconciler: r,
		snapshots:  snapshots,
		outcomes:   outcomes,
		runs:       map[string]*run{},
	}
}

// SetResolver makes finished runs resolve the session's payment markers.
// Call it before Start.
func (m *Monitor) SetResolver(r SessionResolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolver = r
}

func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}
	m.baseCtx, m.cancelAll = context.WithCancel(context.Background())
	m.running = true
	log.Info("[Reconcile Monitor] Started")
}

// Stop cancels every run and waits for the goroutines to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	log.Infof("[Reconcile Monitor] Stopping %d active runs...", len(m.runs))
	m.running = false
	m.cancelAll()
	m.runs = map[string]*run{}
	m.mu.Unlock()

	m.wg.Wait()
	log.Info("[Reconcile Monitor] Stopped")
}

func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Begin starts a run for the session and returns its first snapshot.
func (m *Monitor) Begin(sessionID, customerID string, trigger Trigger) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return Snapshot{}, ErrNotRunning
	}
	if prev, ok := m.runs[sessionID]; ok {
		log.Debugf("[Reconcile Monitor] Replacing run %s for session %s", prev.id, sessionID)
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(m.baseCtx)
	rn := &run{id: uuid.NewString(), cancel: cancel, done: make(chan struct{})}
	m.runs[sessionID] = rn

	now := m.reconciler.now()
	initial := Snapshot{
		RunID:     rn.id,
		State:     StateVerifying,
		Message:   StateVerifying.Message(),
		Trigger:   trigger.Kind,
		StartedAt: now,
		UpdatedAt: now,
	}
	if trigger.Provider != billing.ProviderUnknown {
		initial.Provider = trigger.Provider.String()
	}
	m.saveLocked(sessionID, initial)

	m.wg.Add(1)
	go m.execute(ctx, rn, sessionID, customerID, trigger)
	return initial, nil
}

func (m *Monitor) execute(ctx context.Context, rn *run, sessionID, customerID string, trigger Trigger) {
	defer m.wg.Done()
	defer close(rn.done)
	defer rn.cancel()

	final, err := m.reconciler.Run(ctx, customerID, trigger, func(s Snapshot) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if cur, ok := m.runs[sessionID]; ok && cur == rn {
			s.RunID = rn.id
			m.saveLocked(sessionID, s)
		}
	})

	m.mu.Lock()
	if cur, ok := m.runs[sessionID]; ok && cur == rn {
		delete(m.runs, sessionID)
	}
	m.mu.Unlock()

	if err != nil {
		log.Debugf("[Reconcile Monitor] Run %s for session %s stopped: %v", rn.id, sessionID, err)
		return
	}

	log.Infof("[Reconcile Monitor] Run %s finished in state %s after %d checks", rn.id, final.State, final.Attempts+final.Errors)
	metrics.ReconcileOutcomes.WithLabelValues(string(final.State), string(final.Trigger)).Inc()

	cctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	m.mu.Lock()
	resolver := m.resolver
	m.mu.Unlock()
	if outcome, ok := final.State.PaymentOutcome(); ok && resolver != nil {
		if err := resolver.ResolveSession(cctx, sessionID, outcome); err != nil {
			log.Errorf("[Reconcile Monitor] Could not resolve payment session %s: %v", sessionID, err)
		}
	}
	if m.outcomes != nil {
		if err := m.outcomes.AddOutcome(cctx, string(final.State)); err != nil {
			log.Warnf("[Reconcile Monitor] Could not count outcome: %v", err)
		}
	}
}

func (m *Monitor) saveLocked(sessionID string, s Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.snapshots.Save(ctx, sessionID, s); err != nil {
		log.Errorf("[Reconcile Monitor] Failed to save snapshot for session %s: %v", sessionID, err)
	}
}

// Cancel stops the session's run, if any, and forgets its snapshot. It is
// called when the browser leaves the return page.
func (m *Monitor) Cancel(ctx context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	rn, ok := m.runs[sessionID]
	if ok {
		rn.cancel()
		delete(m.runs, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, m.snapshots.Delete(ctx, sessionID)
}

// Snapshot returns the latest snapshot of the session, nil when none.
func (m *Monitor) Snapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	return m.snapshots.Load(ctx, sessionID)
}

// Forget drops a snapshot once its terminal state has been applied.
func (m *Monitor) Forget(ctx context.Context, sessionID string) error {
	return m.snapshots.Delete(ctx, sessionID)
}

// Record stores s as the session's snapshot without starting a run. The
// return page uses it for states decided before any check, so they survive
// the clean-URL redirect.
func (m *Monitor) Record(ctx context.Context, sessionID string, s Snapshot) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	if s.Message == "" {
		s.Message = s.State.Message()
	}
	return m.snapshots.Save(ctx, sessionID, s)
}

// Active reports whether a run is in flight for the session.
func (m *Monitor) Active(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.runs[sessionID]
	return ok
}

// ActiveRuns is the number of runs in flight.
func (m *Monitor) ActiveRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

// done returns a channel closed when the session's current run exits.
func (m *Monitor) done(sessionID string) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rn, ok := m.runs[sessionID]; ok {
		return rn.done
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}
