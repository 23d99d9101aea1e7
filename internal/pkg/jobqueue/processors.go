package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/vidora/vidora-web/app/models"
	"github.com/vidora/vidora-web/internal/pkg/metrics"
)

// UpgradeCompleter is the backend call retried by upgrade_complete jobs.
type UpgradeCompleter interface {
	CompleteUpgrade(ctx context.Context, paymentID string) error
}

// AttributionHandler delivers attribution_track jobs to sink.
func AttributionHandler(sink AttributionSink) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := AttributionJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("invalid attribution payload: %w", err)
		}
		if err := sink.Track(ctx, payload.Attribution); err != nil {
			metrics.AttributionEvents.WithLabelValues(sink.Name(), "error").Inc()
			return err
		}
		metrics.AttributionEvents.WithLabelValues(sink.Name(), "ok").Inc()
		return nil
	}
}

// UpgradeCompleteHandler retries the upgrade completion call.
func UpgradeCompleteHandler(upgrades UpgradeCompleter) Handler {
	return func(ctx context.Context, job *Job) error {
		payload, err := UpgradeCompleteJobPayloadFromMap(job.Payload)
		if err != nil {
			return fmt.Errorf("invalid upgrade payload: %w", err)
		}
		if payload.PaymentID == "" {
			return errors.New("upgrade job without payment id")
		}
		if err := upgrades.CompleteUpgrade(ctx, payload.PaymentID); err != nil {
			metrics.UpgradeCompletions.WithLabelValues("error").Inc()
			return err
		}
		metrics.UpgradeCompletions.WithLabelValues("ok").Inc()
		log.Infof("[JobQueue] Completed subscription change for payment %s on retry", payload.PaymentID)
		return nil
	}
}

// Enqueuer is the part of Queue producers need.
type Enqueuer interface {
	EnqueueJob(ctx context.Context, jobType JobType, payload map[string]interface{}) (*Job, error)
}

// TrackAttribution queues a record without waiting for delivery. Errors are
// logged, never returned.
func TrackAttribution(ctx context.Context, q Enqueuer, a models.MarketingAttribution) {
	if _, err := q.EnqueueJob(ctx, JobTypeAttributionTrack, AttributionJobPayload{Attribution: a}.ToMap()); err != nil {
		metrics.AttributionEvents.WithLabelValues("queue", "error").Inc()
		log.Warnf("[JobQueue] Dropping attribution for session %s: %v", a.SessionID, err)
	}
}

// RetryingCompleter calls the backend directly and, when that fails,
// schedules an upgrade_complete job. The original error is still returned
// so the caller can log it.
type RetryingCompleter struct {
	Upgrades UpgradeCompleter
	Queue    Enqueuer
}

func (r RetryingCompleter) CompleteUpgrade(ctx context.Context, paymentID string) error {
	err := r.Upgrades.CompleteUpgrade(ctx, paymentID)
	if err == nil {
		return nil
	}
	payload := UpgradeCompleteJobPayload{PaymentID: paymentID}.ToMap()
	if _, qerr := r.Queue.EnqueueJob(context.WithoutCancel(ctx), JobTypeUpgradeComplete, payload); qerr != nil {
		log.Errorf("[JobQueue] Could not schedule upgrade retry for payment %s: %v", paymentID, qerr)
	}
	return err
}
