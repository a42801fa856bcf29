package metrics

import (
	"slices"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

// Resolution is the work needed to compute a set of metrics over one group
type Resolution struct {
	// Atomics is the deduplicated union of required atomics, sorted by name
	Atomics []string
	// Direct lists metrics computed by their own time series aggregate, sorted
	Direct []entities.Metric
}

// Resolve computes the atomics and direct aggregates needed for metrics.
// The result depends only on the registry and the set of metrics, not on
// their order.
func (r *Registry) Resolve(metrics []entities.Metric) (Resolution, error) {
	atomics := make(map[string]struct{})
	direct := make(map[entities.Metric]struct{})

	for _, m := range metrics {
		d, err := r.Lookup(m)
		if err != nil {
			return Resolution{}, err
		}
		for _, name := range d.Requires {
			atomics[name] = struct{}{}
		}
		if d.TimeseriesAggregate != nil {
			direct[m] = struct{}{}
		}
	}

	res := Resolution{
		Atomics: make([]string, 0, len(atomics)),
		Direct:  make([]entities.Metric, 0, len(direct)),
	}
	for name := range atomics {
		res.Atomics = append(res.Atomics, name)
	}
	for m := range direct {
		res.Direct = append(res.Direct, m)
	}
	slices.Sort(res.Atomics)
	slices.Sort(res.Direct)
	return res, nil
}

// NormalizeMetrics drops duplicates, keeping the first occurrence
func NormalizeMetrics(metrics []entities.Metric) []entities.Metric {
	seen := make(map[entities.Metric]struct{}, len(metrics))
	out := make([]entities.Metric, 0, len(metrics))
	for _, m := range metrics {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
