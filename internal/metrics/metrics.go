package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Job cards
	JobCardsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "job_cards_created_total",
			Help: "Job cards created",
		},
	)
	JobCardTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_card_transitions_total",
			Help: "Job card lifecycle moves",
		},
		[]string{"action", "to"},
	)
	PhotoUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_photo_uploads_total",
			Help: "Photo evidence uploads",
		},
		[]string{"result"}, // ok|rejected|error
	)

	// Tenancy
	CompanyRegistrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "company_registrations_total",
			Help: "Company sign-ups",
		},
	)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts",
		},
		[]string{"result"},
	)

	// Events
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Job card events handed to the broker",
		},
		[]string{"result"},
	)

	// Worker kuyruğu
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// /metrics endpoint'i için handler
var Handler = promhttp.Handler

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			JobCardsCreated,
			JobCardTransitions,
			PhotoUploads,
			CompanyRegistrations,
			LoginsTotal,
			EventsPublished,
			WorkerQueueDepth,
		)
	})
}
