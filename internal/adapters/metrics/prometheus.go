package metrics

import (
	"innbot/internal/core/domain"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Prometheus records bot activity on its own registry so tests and the server never touch the
// global default registry.
type Prometheus struct {
	registry       *prometheus.Registry
	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	commands       *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "innbot_lookups_total",
				Help: "Total number of identifier lookups by outcome",
			},
			[]string{"outcome", "source"},
		),
		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "innbot_lookup_duration_seconds",
				Help:    "Duration of identifier lookups",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"source"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "innbot_commands_total",
				Help: "Total number of executed commands",
			},
			[]string{"command"},
		),
	}

	p.registry.MustRegister(
		p.lookups,
		p.lookupDuration,
		p.commands,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return p
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prometheus) ObserveLookup(outcome domain.LookupOutcome, cached bool, duration time.Duration) {
	result := "not_found"
	if outcome.Found {
		result = "found"
	}

	source := "registry"
	if cached {
		source = "cache"
	}

	p.lookups.WithLabelValues(result, source).Inc()
	p.lookupDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (p *Prometheus) CountCommand(command string) {
	p.commands.WithLabelValues(command).Inc()
}
