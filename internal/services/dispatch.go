package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/baharkarakas/jobcard-backend/internal/events"
	"github.com/baharkarakas/jobcard-backend/internal/metrics"
	"github.com/baharkarakas/jobcard-backend/internal/worker"
)

// Dispatcher hands events to the broker off the request path.
type Dispatcher struct {
	pub  events.Publisher
	pool *worker.Pool
	log  *slog.Logger
}

// NewDispatcher with a nil pool publishes inline.
func NewDispatcher(pub events.Publisher, pool *worker.Pool, log *slog.Logger) *Dispatcher {
	if pub == nil {
		pub = events.Noop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{pub: pub, pool: pool, log: log}
}

func (d *Dispatcher) Emit(e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	send := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.pub.Publish(ctx, e); err != nil {
			metrics.EventsPublished.WithLabelValues("error").Inc()
			d.log.Warn("event publish failed", "event", e.Name, "job_card_id", e.JobCardID, "err", err)
			return
		}
		metrics.EventsPublished.WithLabelValues("ok").Inc()
	}
	if d.pool == nil {
		send()
		return
	}
	if err := d.pool.Submit(send); err != nil {
		d.log.Warn("event dropped", "event", e.Name, "err", err)
	}
}

// Go runs a side effect on the pool, inline when there is none.
func (d *Dispatcher) Go(f func()) {
	if d.pool == nil {
		f()
		return
	}
	if err := d.pool.Submit(f); err != nil {
		d.log.Warn("background task dropped", "err", err)
	}
}
