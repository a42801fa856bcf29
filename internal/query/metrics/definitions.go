package metrics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

// Kind tags a metric definition as standard or custom
type Kind int

const (
	// KindStandard metrics derive their value from shared atomics
	KindStandard Kind = iota
	// KindCustom metrics compute their value from the raw batch
	KindCustom
)

func (k Kind) String() string {
	if k == KindCustom {
		return "custom"
	}
	return "standard"
}

// Values holds atomic results for one group, keyed by atomic name
type Values map[string]float64

// Definition describes how a metric is computed. Standard definitions set
// Requires and Derive. Custom definitions set ScalarCompute and/or
// TimeseriesAggregate. A TimeseriesAggregate, when present, is used in
// grouped mode instead of Derive.
type Definition struct {
	Metric              entities.Metric
	Kind                Kind
	Requires            []string
	Derive              func(Values) float64
	ScalarCompute       func(rows []entities.AppointmentRecord) float64
	TimeseriesAggregate func(rows []entities.AppointmentRecord) float64
}

// Validate checks that the definition has a usable computation path
func (d Definition) Validate() error {
	if d.Metric == "" {
		return fmt.Errorf("metric definition without a key")
	}
	switch d.Kind {
	case KindStandard:
		if len(d.Requires) == 0 || d.Derive == nil {
			return fmt.Errorf("standard metric %s needs requires and derive", d.Metric)
		}
	case KindCustom:
		if d.ScalarCompute == nil && d.TimeseriesAggregate == nil {
			return fmt.Errorf("custom metric %s needs a scalar or time series computation", d.Metric)
		}
		if len(d.Requires) > 0 || d.Derive != nil {
			return fmt.Errorf("custom metric %s must not declare atomics", d.Metric)
		}
	default:
		return fmt.Errorf("metric %s has unknown kind %d", d.Metric, d.Kind)
	}
	return nil
}

// SupportsTimeseries reports whether the metric can be computed per group
func (d Definition) SupportsTimeseries() bool {
	return d.TimeseriesAggregate != nil || d.Derive != nil
}

// DefaultDefinitions returns the appointment and service metrics
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Metric:   entities.MetricAppointmentsCount,
			Requires: []string{AtomicTotal},
			Derive:   func(v Values) float64 { return v[AtomicTotal] },
		},
		{
			Metric:   entities.MetricAppointmentsCancelled,
			Requires: []string{AtomicCancelled},
			Derive:   func(v Values) float64 { return v[AtomicCancelled] },
		},
		{
			Metric:   entities.MetricAppointmentsCompleted,
			Requires: []string{AtomicTotal, AtomicCancelled},
			Derive:   func(v Values) float64 { return v[AtomicTotal] - v[AtomicCancelled] },
		},
		{
			Metric:   entities.MetricAppointmentsCancellationRate,
			Requires: []string{AtomicTotal, AtomicCancelled},
			Derive: func(v Values) float64 {
				return Percent(v[AtomicCancelled], v[AtomicTotal])
			},
		},
		{
			Metric:              entities.MetricServicesUniqueCount,
			Kind:                KindCustom,
			ScalarCompute:       uniqueServices,
			TimeseriesAggregate: uniqueServices,
		},
		{
			Metric:   entities.MetricServicesAvgPerAppointment,
			Requires: []string{AtomicServicesTotal, AtomicTotal},
			Derive: func(v Values) float64 {
				if v[AtomicTotal] <= 0 {
					return 0
				}
				return Round2(v[AtomicServicesTotal] / v[AtomicTotal])
			},
		},
	}
}

func uniqueServices(rows []entities.AppointmentRecord) float64 {
	seen := make(map[string]struct{})
	for i := range rows {
		for _, s := range rows[i].Services {
			if s != "" {
				seen[s] = struct{}{}
			}
		}
	}
	return float64(len(seen))
}

var hundred = decimal.NewFromInt(100)

// Round2 scales the binary value by 100 and rounds half away from zero, so
// 1.005 (stored as 1.00499...) yields 1.0.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v * 100).Round(0).Div(hundred).InexactFloat64()
}

// Percent returns part/whole*100 rounded to two decimals, 0 when whole is 0
func Percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round2(part / whole * 100)
}
