// Package metrics exports quiz activity and HTTP latency to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"swipe-quiz/internal/quiz"
)

const namespace = "swipe_quiz"

// Metrics implements quiz.Observer and records request durations for the
// HTTP layer.
type Metrics struct {
	gatherer prometheus.Gatherer

	sessionsStarted prometheus.Counter
	decisions       *prometheus.CounterVec
	resets          prometheus.Counter
	results         *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors with a fresh registry that also carries the
// Go runtime and process collectors.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	return NewWithRegistry(registry, registry)
}

// NewWithRegistry registers with reg and serves from gatherer. Collectors that
// are already registered are reused.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		gatherer: gatherer,
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Quiz sessions opened after a valid contact form.",
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Swipe decisions recorded, by direction.",
		}, []string{"decision"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resets_total",
			Help:      "Sessions started over by the visitor.",
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Completed sessions, by winning profile.",
		}, []string{"profile"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Remote datastore writes abandoned after retries.",
		}, []string{"operation"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	if err := register(reg, &m.sessionsStarted); err != nil {
		return nil, err
	}
	if err := register(reg, &m.decisions); err != nil {
		return nil, err
	}
	if err := register(reg, &m.resets); err != nil {
		return nil, err
	}
	if err := register(reg, &m.results); err != nil {
		return nil, err
	}
	if err := register(reg, &m.persistFailures); err != nil {
		return nil, err
	}
	if err := register(reg, &m.requestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector *C) error {
	if err := reg.Register(*collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				*collector = existing
				return nil
			}
		}
		return fmt.Errorf("register metric: %w", err)
	}
	return nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func (m *Metrics) SessionStarted() {
	m.sessionsStarted.Inc()
}

func (m *Metrics) DecisionRecorded(accepted bool) {
	decision := "reject"
	if accepted {
		decision = "accept"
	}
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) SessionReset() {
	m.resets.Inc()
}

func (m *Metrics) ResultComputed(winner quiz.Label) {
	m.results.WithLabelValues(string(winner)).Inc()
}

func (m *Metrics) PersistFailed(operation string) {
	m.persistFailures.WithLabelValues(operation).Inc()
}

var _ quiz.Observer = (*Metrics)(nil)
