package models

import "time"

// ActivityLog doubles as the notification feed; visibility is decided by CompanyID/ProviderID.
type ActivityLog struct {
	ID          string         `json:"id"`
	CompanyID   *string        `json:"company_id,omitempty"`
	ProviderID  *string        `json:"provider_id,omitempty"`
	JobCardID   *string        `json:"job_card_id,omitempty"`
	ActorUserID *string        `json:"actor_user_id,omitempty"`
	Action      string         `json:"action"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
