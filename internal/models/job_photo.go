package models

import "time"

type JobPhoto struct {
	ID          string    `json:"id"`
	JobCardID   string    `json:"job_card_id"`
	UploadedBy  string    `json:"uploaded_by"`
	ObjectKey   string    `json:"-"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Caption     string    `json:"caption,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
