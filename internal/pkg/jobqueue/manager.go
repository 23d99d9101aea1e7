package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/internal/pkg/env"
	"github.com/vidora/vidora-web/internal/pkg/metrics"
)

// Manager manages the global job queue and background tasks
type Manager struct {
	queue       *Queue
	statsTicker *time.Ticker
	stopCh      chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	running     bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			queue:  NewQueue(env.GetEnvInt("JOBQUEUE_WORKERS", 3)),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start starts the job queue and the stats exporter
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	m.queue.Start()

	m.statsTicker = time.NewTicker(15 * time.Second)
	m.wg.Add(1)
	go m.statsWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.statsTicker != nil {
		m.statsTicker.Stop()
	}
	close(m.stopCh)
	m.running = false
	m.wg.Wait()

	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// statsWorker exports queue depths to prometheus
func (m *Manager) statsWorker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case <-m.statsTicker.C:
			m.exportStats(context.Background())
		}
	}
}

func (m *Manager) exportStats(ctx context.Context) {
	d, err := m.queue.Depth(ctx)
	if err != nil {
		log.Debugf("[JobQueue Manager] Queue depth unavailable: %v", err)
		return
	}
	metrics.JobQueueDepth.WithLabelValues("pending").Set(float64(d.Pending))
	metrics.JobQueueDepth.WithLabelValues("processing").Set(float64(d.Processing))
	metrics.JobQueueDepth.WithLabelValues("delayed").Set(float64(d.Delayed))
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Stats is the summary shown on the admin dashboard.
type Stats struct {
	Depth
	Completed int64
	Failed    int64
}

func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	d, err := m.queue.Depth(ctx)
	if err != nil {
		return Stats{}, err
	}
	totals, err := m.queue.Totals(ctx)
	if err != nil {
		return Stats{Depth: d}, err
	}
	return Stats{Depth: d, Completed: totals[JobStatusCompleted], Failed: totals[JobStatusFailed]}, nil
}
