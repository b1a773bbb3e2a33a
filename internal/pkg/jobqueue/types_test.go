package jobqueue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Notification Email", JobTypeNotificationEmail, "notification_email"},
		{"Lead Match", JobTypeLeadMatch, "lead_match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestNotificationEmailJobPayload_RoundTrip(t *testing.T) {
	payload := NotificationEmailJobPayload{
		NotificationID: 42,
		UserID:         7,
		Email:          "contractor@example.com",
		Subject:        "New lead: Bathroom remodel",
		Body:           "<p>A new project matches your subscription.</p>",
	}

	restored, err := NotificationEmailJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestLeadMatchJobPayload_RoundTrip(t *testing.T) {
	payload := LeadMatchJobPayload{
		LeadID:     99,
		Category:   "plumbing",
		PostalCode: "10115",
	}

	restored, err := LeadMatchJobPayloadFromMap(payload.ToMap())
	require.NoError(t, err)
	assert.Equal(t, payload, *restored)
}

func TestJob_JSONRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	job := &Job{
		ID:         "job-1",
		Type:       JobTypeLeadMatch,
		Status:     JobStatusPending,
		Payload:    LeadMatchJobPayload{LeadID: 1, Category: "roofing", PostalCode: "20095"}.ToMap(),
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}

	data, err := json.Marshal(job)
	require.NoError(t, err)

	var restored Job
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, job.ID, restored.ID)
	assert.Equal(t, job.Type, restored.Type)
	assert.Equal(t, job.Status, restored.Status)
	assert.Equal(t, job.MaxRetries, restored.MaxRetries)
}

func TestJob_IsRetryable(t *testing.T) {
	job := &Job{Status: JobStatusFailed, RetryCount: 1, MaxRetries: 3}
	assert.True(t, job.IsRetryable())

	job.RetryCount = 3
	assert.False(t, job.IsRetryable())

	job.RetryCount = 1
	job.Status = JobStatusPending
	assert.False(t, job.IsRetryable())
}

func TestJob_StatusTransitions(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: DefaultMaxRetries}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("smtp timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "smtp timeout", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.Empty(t, job.ErrorMsg)
	require.NotNil(t, job.CompletedAt)
}

func TestContainsCategory(t *testing.T) {
	categories := []string{"plumbing", "roofing"}
	assert.True(t, containsCategory(categories, "roofing"))
	assert.False(t, containsCategory(categories, "electrical"))
	assert.False(t, containsCategory(nil, "plumbing"))
}
