// Package events publishes job-card lifecycle events for downstream consumers.
package events

import (
	"context"
	"time"
)

type Event struct {
	Name       string         `json:"name"`
	JobCardID  string         `json:"job_card_id,omitempty"`
	CompanyID  string         `json:"company_id,omitempty"`
	ProviderID string         `json:"provider_id,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops everything; used when AMQP_URL is empty.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error { return nil }
