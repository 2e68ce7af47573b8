package domain

import (
	"net/url"
	"time"
)

// JobPriority controls queue ordering. High is processed first.
type JobPriority string

const (
	JobPriorityHigh   JobPriority = "high"
	JobPriorityNormal JobPriority = "normal"
	JobPriorityLow    JobPriority = "low"
)

func (p JobPriority) IsValid() bool {
	switch p {
	case JobPriorityHigh, JobPriorityNormal, JobPriorityLow:
		return true
	}
	return false
}

// JobStatus tracks the lifecycle of a lint job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// LintJob is an asynchronous lint submission.
type LintJob struct {
	ID           string      `json:"id"`
	Priority     JobPriority `json:"priority"`
	Status       JobStatus   `json:"status"`
	Inputs       []string    `json:"inputs"`
	CallbackURL  *string     `json:"callback_url,omitempty"`
	Total        int         `json:"total"`
	Passed       int         `json:"passed"`
	Failed       int         `json:"failed"`
	ErrorMessage *string     `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	StartedAt    *time.Time  `json:"started_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// SubmitJobRequest is the inbound payload for an asynchronous lint job.
type SubmitJobRequest struct {
	Inputs      []string    `json:"inputs"`
	Priority    JobPriority `json:"priority"`
	CallbackURL string      `json:"callback_url,omitempty"`
}

func (r *SubmitJobRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return ErrEmptyJob
	}
	if !r.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if r.CallbackURL != "" {
		u, err := url.Parse(r.CallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidCallback
		}
	}
	return nil
}

// JobReport is the response shape for job queries and webhook deliveries:
// the job plus its findings once processing produced any.
type JobReport struct {
	Job      LintJob      `json:"job"`
	Findings []LintResult `json:"findings,omitempty"`
}
