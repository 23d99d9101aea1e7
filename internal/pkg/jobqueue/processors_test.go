package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora-web/app/models"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

type fakeTracker struct {
	got []models.MarketingAttribution
}

func (f *fakeTracker) TrackAttribution(_ context.Context, a models.MarketingAttribution) error {
	f.got = append(f.got, a)
	return nil
}

type fakeEnqueuer struct {
	jobs []JobType
	maps []map[string]interface{}
	err  error
}

func (f *fakeEnqueuer) EnqueueJob(_ context.Context, jobType JobType, payload map[string]interface{}) (*Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.jobs = append(f.jobs, jobType)
	f.maps = append(f.maps, payload)
	return &Job{ID: "j1", Type: jobType, Payload: payload}, nil
}

type upgradeFunc func(ctx context.Context, paymentID string) error

func (f upgradeFunc) CompleteUpgrade(ctx context.Context, paymentID string) error { return f(ctx, paymentID) }

func TestKafkaSinkPublishesJSON(t *testing.T) {
	w := &fakeWriter{}
	sink := &KafkaSink{writer: w, topic: DefaultAttributionTopic}
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := sink.Track(context.Background(), models.MarketingAttribution{SessionID: "sid-1", UTMCampaign: "spring", Timestamp: &ts})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "sid-1", string(msg.Key))
	assert.Equal(t, ts, msg.Time)

	var decoded models.MarketingAttribution
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "spring", decoded.UTMCampaign)
}

func TestKafkaSinkWrapsError(t *testing.T) {
	sink := &KafkaSink{writer: &fakeWriter{err: errors.New("no brokers")}, topic: "t"}
	err := sink.Track(context.Background(), models.MarketingAttribution{})
	assert.ErrorContains(t, err, "publish attribution to t")
}

func TestSinkFromEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	assert.Equal(t, "api", SinkFromEnv(&fakeTracker{}).Name())

	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	sink := SinkFromEnv(&fakeTracker{})
	assert.Equal(t, "kafka", sink.Name())
	require.NoError(t, sink.(*KafkaSink).Close())
}

func TestAttributionHandlerUsesSink(t *testing.T) {
	tracker := &fakeTracker{}
	h := AttributionHandler(NewAPISink(tracker))

	job := &Job{Payload: AttributionJobPayload{Attribution: models.MarketingAttribution{SessionID: "sid", PromoCode: "X1"}}.ToMap()}
	require.NoError(t, h(context.Background(), job))
	require.Len(t, tracker.got, 1)
	assert.Equal(t, "X1", tracker.got[0].PromoCode)
}

func TestTrackAttributionSwallowsQueueErrors(t *testing.T) {
	q := &fakeEnqueuer{err: errors.New("redis down")}
	assert.NotPanics(t, func() {
		TrackAttribution(context.Background(), q, models.MarketingAttribution{SessionID: "sid"})
	})

	ok := &fakeEnqueuer{}
	TrackAttribution(context.Background(), ok, models.MarketingAttribution{SessionID: "sid"})
	assert.Equal(t, []JobType{JobTypeAttributionTrack}, ok.jobs)
}

func TestRetryingCompleter(t *testing.T) {
	q := &fakeEnqueuer{}
	c := RetryingCompleter{
		Upgrades: upgradeFunc(func(context.Context, string) error { return errors.New("503") }),
		Queue:    q,
	}
	err := c.CompleteUpgrade(context.Background(), "pay_3")
	assert.Error(t, err)
	require.Equal(t, []JobType{JobTypeUpgradeComplete}, q.jobs)
	assert.Equal(t, "pay_3", q.maps[0]["payment_id"])

	q = &fakeEnqueuer{}
	c = RetryingCompleter{Upgrades: upgradeFunc(func(context.Context, string) error { return nil }), Queue: q}
	require.NoError(t, c.CompleteUpgrade(context.Background(), "pay_4"))
	assert.Empty(t, q.jobs)
}

func TestUpgradeCompleteHandler(t *testing.T) {
	var got string
	h := UpgradeCompleteHandler(upgradeFunc(func(_ context.Context, id string) error {
		got = id
		return nil
	}))
	require.NoError(t, h(context.Background(), &Job{Payload: UpgradeCompleteJobPayload{PaymentID: "pay_5"}.ToMap()}))
	assert.Equal(t, "pay_5", got)

	assert.Error(t, h(context.Background(), &Job{Payload: map[string]interface{}{}}))
}
