package entities

import "time"

// DateLayout is the presentation format of period boundaries
const DateLayout = "2006-01-02"

// PeriodRange is a half-open [Start, End) range rendered as dates
type PeriodRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewPeriodRange renders start and end with DateLayout
func NewPeriodRange(start, end time.Time) PeriodRange {
	return PeriodRange{Start: start.Format(DateLayout), End: end.Format(DateLayout)}
}

// PeriodSummary holds appointment counts for one period
type PeriodSummary struct {
	Period           string  `json:"period"`
	TotalCount       int     `json:"total_count"`
	CancelledCount   int     `json:"cancelled_count"`
	CompletedCount   int     `json:"completed_count"`
	CancellationRate float64 `json:"cancellation_rate"`
}

// ComparisonKind tells which calendar comparison produced a result
type ComparisonKind string

const (
	ComparisonMonthOverMonth ComparisonKind = "MOM"
	ComparisonYearOverYear   ComparisonKind = "YOY"
)

// ComparisonResult compares a current period against a previous one.
// CountChangePercent is nil when the previous total is zero.
type ComparisonResult struct {
	Kind                   ComparisonKind `json:"kind"`
	Current                PeriodSummary  `json:"current"`
	Previous               PeriodSummary  `json:"previous"`
	CountChange            int            `json:"count_change"`
	CountChangePercent     *float64       `json:"count_change_percent"`
	CancellationRateChange float64        `json:"cancellation_rate_change"`
}

// PeriodComparison is the value of a metric over a comparison range
type PeriodComparison struct {
	Period        PeriodRange `json:"period"`
	PreviousValue float64     `json:"previous_value"`
	ChangePercent *float64    `json:"change_percent"`
}

// MetricSummary is a metric value with previous-period and previous-year comparisons
type MetricSummary struct {
	Metric         Metric           `json:"metric"`
	Period         PeriodRange      `json:"period"`
	Value          float64          `json:"value"`
	PreviousPeriod PeriodComparison `json:"previous_period"`
	PreviousYear   PeriodComparison `json:"previous_year"`
}

// SeriesPoint is one period of a time series
type SeriesPoint struct {
	Period string             `json:"period"`
	Values map[string]float64 `json:"values"`
}

// TimeSeries is a grouped metric series
type TimeSeries struct {
	Granularity Granularity   `json:"granularity"`
	Timezone    string        `json:"timezone"`
	Metrics     []Metric      `json:"metrics"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Series      []SeriesPoint `json:"series"`
}

// ServiceBreakdownItem holds per-service counts
type ServiceBreakdownItem struct {
	Service          string  `json:"service"`
	Count            int     `json:"count"`
	Percentage       float64 `json:"percentage"`
	Cancelled        int     `json:"cancelled"`
	CancellationRate float64 `json:"cancellation_rate"`
}

// ServiceBreakdown lists services by appointment count
type ServiceBreakdown struct {
	Period            PeriodRange            `json:"period"`
	TotalAppointments int                    `json:"total_appointments"`
	Services          []ServiceBreakdownItem `json:"services"`
}
