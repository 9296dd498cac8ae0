// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package optimistic

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeConfirmed  = "confirmed"
	outcomeRolledBack = "rolled_back"
	outcomeRejected   = "rejected"
)

// Metrics counts mutation outcomes as stackit_mutations_total{kind,outcome}.
// A nil *Metrics records nothing.
type Metrics struct {
	mutations *prometheus.CounterVec
}

// NewMetrics registers the counters on reg. Registering twice on the same
// registerer reuses the existing collector. A nil reg leaves the counters
// unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stackit",
		Name:      "mutations_total",
		Help:      "Optimistic mutations by kind and outcome.",
	}, []string{"kind", "outcome"})

	if reg != nil {
		if err := reg.Register(cv); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			cv = existing
		}
	}
	return &Metrics{mutations: cv}, nil
}

// Counter returns the counter for kind and outcome, for inspection.
func (m *Metrics) Counter(kind, outcome string) prometheus.Counter {
	return m.mutations.WithLabelValues(kind, outcome)
}

func (m *Metrics) observe(kind, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(kind, outcome).Inc()
}
