package metrics

import (
	"net/http"

	"github.com/AdamBeresnev/trivia-tournament/internal/bracket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts engine activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	structuresGenerated *prometheus.CounterVec
	resultsAccepted     *prometheus.CounterVec
	resultsRejected     *prometheus.CounterVec
	transitions         *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		structuresGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "structures_generated_total",
			Help:      "Brackets and schedules generated, by tournament format.",
		}, []string{"format"}),
		resultsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "results_accepted_total",
			Help:      "Match results recorded, by tournament format.",
		}, []string{"format"}),
		resultsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "results_rejected_total",
			Help:      "Match results refused by the engine, by error code.",
		}, []string{"code"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trivia",
			Name:      "tournament_transitions_total",
			Help:      "Tournament status changes, by target status.",
		}, []string{"to"}),
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.structuresGenerated,
		m.resultsAccepted,
		m.resultsRejected,
		m.transitions,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) StructureGenerated(format bracket.TournamentFormat) {
	if m == nil {
		return
	}
	m.structuresGenerated.WithLabelValues(string(format)).Inc()
}

func (m *Metrics) ResultAccepted(format bracket.TournamentFormat) {
	if m == nil {
		return
	}
	m.resultsAccepted.WithLabelValues(string(format)).Inc()
}

// ResultRejected records a refused submission. Errors without an engine code
// are counted as "internal".
func (m *Metrics) ResultRejected(err error) {
	if m == nil {
		return
	}
	code := string(bracket.CodeOf(err))
	if code == "" {
		code = "internal"
	}
	m.resultsRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) Transition(to bracket.TournamentStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}
