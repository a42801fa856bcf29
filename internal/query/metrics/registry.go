package metrics

import (
	"fmt"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// Registry maps metric keys to their definitions. It is immutable once built.
type Registry struct {
	atomics map[string]Atomic
	defs    map[entities.Metric]Definition
	order   []entities.Metric
}

// NewRegistry builds a registry and checks that every required atomic exists
func NewRegistry(atomics []Atomic, defs []Definition) (*Registry, error) {
	r := &Registry{
		atomics: make(map[string]Atomic, len(atomics)),
		defs:    make(map[entities.Metric]Definition, len(defs)),
		order:   make([]entities.Metric, 0, len(defs)),
	}

	for _, a := range atomics {
		if a.Name == "" || a.Aggregate == nil {
			return nil, fmt.Errorf("invalid atomic %q", a.Name)
		}
		if _, dup := r.atomics[a.Name]; dup {
			return nil, fmt.Errorf("duplicate atomic %q", a.Name)
		}
		r.atomics[a.Name] = a
	}

	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.defs[d.Metric]; dup {
			return nil, fmt.Errorf("duplicate metric %s", d.Metric)
		}
		for _, name := range d.Requires {
			if _, ok := r.atomics[name]; !ok {
				return nil, fmt.Errorf("metric %s requires unregistered atomic %q", d.Metric, name)
			}
		}
		r.defs[d.Metric] = d
		r.order = append(r.order, d.Metric)
	}

	return r, nil
}

// MustDefaultRegistry returns the built-in registry, panicking if it is inconsistent
func MustDefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultAtomics(), DefaultDefinitions())
	if err != nil {
		panic(fmt.Sprintf("metrics: inconsistent default registry: %v", err))
	}
	return r
}

// Lookup returns the definition for metric
func (r *Registry) Lookup(metric entities.Metric) (Definition, error) {
	d, ok := r.defs[metric]
	if !ok {
		return Definition{}, apperrors.NewUnknownMetricError(metric.String())
	}
	return d, nil
}

// Atomic returns a catalog entry. Asking for an unregistered atomic is a
// programming error and panics.
func (r *Registry) Atomic(name string) Atomic {
	a, ok := r.atomics[name]
	if !ok {
		panic(fmt.Sprintf("metrics: unregistered atomic %q", name))
	}
	return a
}

// Metrics lists the registered metrics in registration order
func (r *Registry) Metrics() []entities.Metric {
	out := make([]entities.Metric, len(r.order))
	copy(out, r.order)
	return out
}

// ParseMetric validates a raw metric key against the registry
func (r *Registry) ParseMetric(raw string) (entities.Metric, error) {
	m := entities.Metric(raw)
	if _, err := r.Lookup(m); err != nil {
		return "", err
	}
	return m, nil
}
