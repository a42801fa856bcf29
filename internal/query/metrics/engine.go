package metrics

import (
	"cmp"
	"slices"
	"time"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// Engine evaluates registered metrics over an in-memory batch. It holds no
// state besides the registry, so results depend only on the input.
type Engine struct {
	registry *Registry
}

// NewEngine creates an engine over registry
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Registry returns the registry the engine evaluates against
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Scalar computes one metric over the whole batch. An empty batch yields 0.
func (e *Engine) Scalar(metric entities.Metric, rows []entities.AppointmentRecord) (float64, error) {
	d, err := e.registry.Lookup(metric)
	if err != nil {
		return 0, err
	}

	if d.ScalarCompute != nil {
		return d.ScalarCompute(rows), nil
	}
	if d.Derive == nil {
		// Only a time series aggregate: the whole batch is one group.
		return d.TimeseriesAggregate(rows), nil
	}

	values := make(Values, len(d.Requires))
	for _, name := range d.Requires {
		values[name] = e.registry.Atomic(name).Aggregate(rows)
	}
	return d.Derive(values), nil
}

// Timeseries groups rows by the period of their start time in loc and
// evaluates metrics per group. Only periods present in rows are returned,
// in ascending order.
func (e *Engine) Timeseries(
	metrics []entities.Metric,
	rows []entities.AppointmentRecord,
	granularity entities.Granularity,
	loc *time.Location,
) ([]entities.SeriesPoint, error) {
	if loc == nil {
		loc = time.UTC
	}

	defs := make([]Definition, 0, len(metrics))
	for _, m := range metrics {
		d, err := e.registry.Lookup(m)
		if err != nil {
			return nil, err
		}
		if !d.SupportsTimeseries() {
			return nil, apperrors.NewValidationError("metric " + m.String() + " not supported in time series")
		}
		defs = append(defs, d)
	}

	resolution, err := e.registry.Resolve(metrics)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]entities.AppointmentRecord)
	for _, row := range rows {
		label := granularity.PeriodLabel(row.Start.In(loc))
		groups[label] = append(groups[label], row)
	}

	series := make([]entities.SeriesPoint, 0, len(groups))
	for label, group := range groups {
		atomics := make(Values, len(resolution.Atomics))
		for _, name := range resolution.Atomics {
			atomics[name] = e.registry.Atomic(name).Aggregate(group)
		}

		values := make(map[string]float64, len(defs))
		for _, d := range defs {
			if d.TimeseriesAggregate != nil {
				values[d.Metric.String()] = d.TimeseriesAggregate(group)
				continue
			}
			values[d.Metric.String()] = d.Derive(atomics)
		}
		series = append(series, entities.SeriesPoint{Period: label, Values: values})
	}

	slices.SortFunc(series, func(a, b entities.SeriesPoint) int {
		return cmp.Compare(a.Period, b.Period)
	})
	return series, nil
}

// ServiceBreakdown counts appointments per service. Percentages are
// relative to the number of appointments in rows.
func (e *Engine) ServiceBreakdown(rows []entities.AppointmentRecord) []entities.ServiceBreakdownItem {
	type tally struct{ count, cancelled int }

	byService := make(map[string]*tally)
	for i := range rows {
		cancelled := rows[i].IsCustomerCancellation()
		for _, service := range rows[i].Services {
			if service == "" {
				continue
			}
			t, ok := byService[service]
			if !ok {
				t = &tally{}
				byService[service] = t
			}
			t.count++
			if cancelled {
				t.cancelled++
			}
		}
	}

	total := float64(max(len(rows), 1))
	items := make([]entities.ServiceBreakdownItem, 0, len(byService))
	for service, t := range byService {
		items = append(items, entities.ServiceBreakdownItem{
			Service:          service,
			Count:            t.count,
			Percentage:       Round2(float64(t.count) / total * 100),
			Cancelled:        t.cancelled,
			CancellationRate: Percent(float64(t.cancelled), float64(t.count)),
		})
	}

	slices.SortFunc(items, func(a, b entities.ServiceBreakdownItem) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Service, b.Service)
	})
	return items
}
