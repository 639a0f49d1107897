package logging

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"go.dw1.io/x/exp/rendersec"
)

// Metrics counts sandbox events. It implements [rendersec.Logger] and is
// usually combined with a logging adapter through [Tee].
type Metrics struct {
	denials       *prometheus.CounterVec
	displacements prometheus.Counter
}

// NewMetrics registers the sandbox counters with reg under namespace.
// A nil reg uses [prometheus.DefaultRegisterer].
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		denials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rendersec",
				Name:      "denials_total",
				Help:      "Total number of operations denied by the render sandbox",
			},
			[]string{"category"},
		),
		displacements: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rendersec",
				Name:      "displacements_total",
				Help:      "Total number of sandboxes disposed after being displaced",
			},
		),
	}

	if err := reg.Register(m.denials); err != nil {
		return nil, fmt.Errorf("register denials counter: %w", err)
	}

	if err := reg.Register(m.displacements); err != nil {
		reg.Unregister(m.denials)

		return nil, fmt.Errorf("register displacements counter: %w", err)
	}

	return m, nil
}

// Warn implements [rendersec.Logger].
func (m *Metrics) Warn(_ string, err error) {
	var denied *rendersec.DeniedError
	switch {
	case errors.As(err, &denied):
		m.denials.WithLabelValues(denied.Category.String()).Inc()
	case errors.Is(err, rendersec.ErrDisplaced):
		m.displacements.Inc()
	}
}

// Denials returns the denial counter for category.
func (m *Metrics) Denials(category rendersec.Category) prometheus.Counter {
	return m.denials.WithLabelValues(category.String())
}

// Displacements returns the displacement counter.
func (m *Metrics) Displacements() prometheus.Counter {
	return m.displacements
}
