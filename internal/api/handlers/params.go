package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/query/metrics"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// Accepted date layouts. Values without an offset are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(q url.Values, name string) (time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return time.Time{}, apperrors.NewValidationError(name + " is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError(
		fmt.Sprintf("invalid %s format (use RFC3339 or YYYY-MM-DD)", name))
}

func parseDateRange(q url.Values) (time.Time, time.Time, error) {
	start, err := parseDate(q, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(q, "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseMetrics accepts repeated and comma-separated metrics parameters
func parseMetrics(q url.Values, registry *metrics.Registry) ([]entities.Metric, error) {
	var out []entities.Metric
	for _, value := range q["metrics"] {
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			m, err := registry.ParseMetric(raw)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.NewValidationError("at least one metric is required")
	}
	return out, nil
}

func parseLocation(q url.Values) (*time.Location, error) {
	name := strings.TrimSpace(q.Get("timezone"))
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown timezone %q", name))
	}
	return loc, nil
}

// parseInt reports whether the parameter was present
func parseInt(q url.Values, name string) (int, bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, apperrors.NewValidationError(name + " must be an integer")
	}
	return v, true, nil
}

func requireInt(q url.Values, name string) (int, error) {
	v, ok, err := parseInt(q, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperrors.NewValidationError(name + " is required")
	}
	return v, nil
}
