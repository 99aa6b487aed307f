package metrics

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rgonek/fider-markdown/renderer"
)

const namespace = "fider_markdown"

// Recorder implements renderer.Recorder using Prometheus counters.
type Recorder struct {
	renders *prom.CounterVec
	targets *prom.CounterVec
}

var _ renderer.Recorder = (*Recorder)(nil)

// NewRecorder constructs the render counters and registers them with reg.
// Registering twice against the same registry reuses the existing
// collectors. A nil reg uses a private registry.
func NewRecorder(reg prom.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	renders := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "renders_total",
		Help:      "Markdown renders by output mode",
	}, []string{"mode"})
	targets := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "targets_total",
		Help:      "Link and image destinations by scheme policy outcome",
	}, []string{"kind", "outcome"})

	var err error
	if renders, err = register(reg, renders); err != nil {
		return nil, err
	}
	if targets, err = register(reg, targets); err != nil {
		return nil, err
	}

	return &Recorder{renders: renders, targets: targets}, nil
}

func register(reg prom.Registerer, c *prom.CounterVec) (*prom.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prom.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prom.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	return c, nil
}

// ObserveRender counts a render in the given mode.
func (r *Recorder) ObserveRender(mode renderer.Mode) {
	if r == nil {
		return
	}
	r.renders.WithLabelValues(string(mode)).Inc()
}

// ObserveTarget counts a link or image destination by policy outcome.
func (r *Recorder) ObserveTarget(kind renderer.TargetKind, outcome string) {
	if r == nil {
		return
	}
	r.targets.WithLabelValues(string(kind), outcome).Inc()
}
