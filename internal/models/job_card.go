package models

import "time"

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobAccepted   JobStatus = "accepted"
	JobDeclined   JobStatus = "declined"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

var AllJobStatuses = []JobStatus{JobPending, JobAccepted, JobDeclined, JobInProgress, JobCompleted, JobCancelled}

func (s JobStatus) Valid() bool {
	for _, v := range AllJobStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s JobStatus) Terminal() bool { return s == JobCompleted || s == JobCancelled }

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type JobCard struct {
	ID              string     `json:"id"`
	CompanyID       string     `json:"company_id"`
	ProviderID      *string    `json:"provider_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	Location        string     `json:"location"`
	Priority        Priority   `json:"priority"`
	Status          JobStatus  `json:"status"`
	ScheduledFor    *time.Time `json:"scheduled_for,omitempty"`
	DeclineReason   string     `json:"decline_reason,omitempty"`
	CompletionNotes string     `json:"completion_notes,omitempty"`
	CreatedBy       string     `json:"created_by"`
	AcceptedAt      *time.Time `json:"accepted_at,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AssignedTo reports whether providerID is the card's current provider.
func (j JobCard) AssignedTo(providerID string) bool {
	return j.ProviderID != nil && *j.ProviderID == providerID
}
