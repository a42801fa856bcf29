package entities

import (
	"fmt"
	"strings"
	"time"
)

// Metric identifies a registered metric
type Metric string

const (
	MetricAppointmentsCount            Metric = "appointments.count"
	MetricAppointmentsCancelled        Metric = "appointments.cancelled"
	MetricAppointmentsCompleted        Metric = "appointments.completed"
	MetricAppointmentsCancellationRate Metric = "appointments.cancellation_rate"
	MetricServicesUniqueCount          Metric = "services.unique_count"
	MetricServicesAvgPerAppointment    Metric = "services.avg_per_appointment"
)

func (m Metric) String() string {
	return string(m)
}

// Granularity is the time-bucketing unit of a series
type Granularity string

const (
	GranularityDay   Granularity = "DAY"
	GranularityWeek  Granularity = "WEEK"
	GranularityMonth Granularity = "MONTH"
	GranularityYear  Granularity = "YEAR"
)

// ParseGranularity accepts any letter case
func ParseGranularity(raw string) (Granularity, error) {
	switch g := Granularity(strings.ToUpper(strings.TrimSpace(raw))); g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return g, nil
	default:
		return "", fmt.Errorf("unsupported granularity %q (use DAY, WEEK, MONTH or YEAR)", raw)
	}
}

// PeriodLabel formats t (already in the target location) as the bucket key
// for g. Labels sort lexicographically in chronological order.
func (g Granularity) PeriodLabel(t time.Time) string {
	switch g {
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityMonth:
		return t.Format("2006-01")
	case GranularityYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}
