package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/vidora/vidora-web/app/models"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeAttributionTrack JobType = "attribution_track"
	JobTypeUpgradeComplete  JobType = "upgrade_complete"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// AttributionJobPayload carries one marketing landing to the tracking sink.
type AttributionJobPayload struct {
	Attribution models.MarketingAttribution `json:"attribution"`
}

func (p AttributionJobPayload) ToMap() map[string]interface{} {
	return toMap(p)
}

func AttributionJobPayloadFromMap(data map[string]interface{}) (*AttributionJobPayload, error) {
	var payload AttributionJobPayload
	err := fromMap(data, &payload)
	return &payload, err
}

// UpgradeCompleteJobPayload retries a failed upgrade/renewal completion.
type UpgradeCompleteJobPayload struct {
	PaymentID string `json:"payment_id"`
}

func (p UpgradeCompleteJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{"payment_id": p.PaymentID}
}

func UpgradeCompleteJobPayloadFromMap(data map[string]interface{}) (*UpgradeCompleteJobPayload, error) {
	var payload UpgradeCompleteJobPayload
	err := fromMap(data, &payload)
	return &payload, err
}

// toMap round-trips v through JSON so the payload survives storage as a
// plain map.
func toMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{}
	_ = json.Unmarshal(data, &out)
	return out
}

func fromMap(data map[string]interface{}, v interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, v)
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
