package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/beaesthetic/analytics/internal/adapters/cache"
	"github.com/beaesthetic/analytics/internal/api/handlers"
	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/query/metrics"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// MockAnalyticsService mocks the analytics read API
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetTimeseries(ctx context.Context, granularity entities.Granularity, metrics []entities.Metric, start, end time.Time, loc *time.Location) (*entities.TimeSeries, error) {
	args := m.Called(ctx, granularity, metrics, start, end, loc)
	if v := args.Get(0); v != nil {
		return v.(*entities.TimeSeries), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) GetSummary(ctx context.Context, metric entities.Metric, start, end time.Time) (*entities.MetricSummary, error) {
	args := m.Called(ctx, metric, start, end)
	if v := args.Get(0); v != nil {
		return v.(*entities.MetricSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) GetServicesBreakdown(ctx context.Context, start, end time.Time) (*entities.ServiceBreakdown, error) {
	args := m.Called(ctx, start, end)
	if v := args.Get(0); v != nil {
		return v.(*entities.ServiceBreakdown), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) ComputeMoM(ctx context.Context, year, month int) (*entities.ComparisonResult, error) {
	args := m.Called(ctx, year, month)
	if v := args.Get(0); v != nil {
		return v.(*entities.ComparisonResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAnalyticsService) ComputeYoY(ctx context.Context, year int, month *int) (*entities.ComparisonResult, error) {
	args := m.Called(ctx, year, month)
	if v := args.Get(0); v != nil {
		return v.(*entities.ComparisonResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockInsightsService mocks the inactive customers insight
type MockInsightsService struct {
	mock.Mock
}

func (m *MockInsightsService) GetInactiveCustomers(ctx context.Context, limit int) (*entities.InactiveCustomers, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.(*entities.InactiveCustomers), args.Error(1)
	}
	return nil, args.Error(1)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}

type fakeStats struct{}

func (fakeStats) Stats() cache.Stats {
	return cache.Stats{Entries: 3, MaxEntries: 512, Hits: 7, Misses: 3}
}

func newAnalyticsHandler() (*handlers.AnalyticsHandler, *MockAnalyticsService) {
	svc := new(MockAnalyticsService)
	return handlers.NewAnalyticsHandler(svc, metrics.MustDefaultRegistry()), svc
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func utc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestAnalyticsHandler_GetTimeseries(t *testing.T) {
	t.Run("accepts repeated and comma separated metrics", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		want := []entities.Metric{
			entities.MetricAppointmentsCount,
			entities.MetricAppointmentsCancellationRate,
			entities.MetricAppointmentsCompleted,
		}
		svc.On("GetTimeseries", mock.Anything, entities.GranularityMonth, want,
			utc(2024, 1, 1), utc(2024, 4, 1),
			mock.MatchedBy(func(loc *time.Location) bool { return loc.String() == "Europe/Rome" }),
		).Return(&entities.TimeSeries{Granularity: entities.GranularityMonth}, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/analytics/timeseries?granularity=month&metrics=appointments.count,appointments.cancellation_rate&metrics=appointments.completed&start_date=2024-01-01&end_date=2024-04-01T00:00:00Z&timezone=Europe/Rome", nil)
		w := httptest.NewRecorder()

		handler.GetTimeseries(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MONTH", decodeBody(t, w)["granularity"])
		svc.AssertExpectations(t)
	})

	t.Run("rejects unknown metric before calling the service", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		req := httptest.NewRequest(http.MethodGet,
			"/analytics/timeseries?granularity=DAY&metrics=appointments.bogus&start_date=2024-01-01&end_date=2024-02-01", nil)
		w := httptest.NewRecorder()

		handler.GetTimeseries(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "appointments.bogus")
		svc.AssertNotCalled(t, "GetTimeseries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects missing granularity", func(t *testing.T) {
		handler, _ := newAnalyticsHandler()
		req := httptest.NewRequest(http.MethodGet,
			"/analytics/timeseries?metrics=appointments.count&start_date=2024-01-01&end_date=2024-02-01", nil)
		w := httptest.NewRecorder()

		handler.GetTimeseries(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		handler, _ := newAnalyticsHandler()
		req := httptest.NewRequest(http.MethodGet,
			"/analytics/timeseries?granularity=DAY&metrics=appointments.count&start_date=2024-01-01&end_date=2024-02-01&timezone=Mars/Olympus", nil)
		w := httptest.NewRecorder()

		handler.GetTimeseries(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		handler, _ := newAnalyticsHandler()
		req := httptest.NewRequest(http.MethodGet,
			"/analytics/timeseries?granularity=DAY&metrics=appointments.count&start_date=01/02/2024&end_date=2024-02-01", nil)
		w := httptest.NewRecorder()

		handler.GetTimeseries(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "start_date")
	})

	t.Run("maps store failures to service unavailable", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		svc.On("GetTimeseries", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.NewExternalError("failed to load appointments", errors.New("timeout")))
		req := httptest.NewRequest(http.MethodGet,
			"/analytics/timeseries?granularity=DAY&metrics=appointments.count&start_date=2024-01-01&end_date=2024-02-01", nil)
		w := httptest.NewRecorder()

		handler.GetTimeseries(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestAnalyticsHandler_GetSummary(t *testing.T) {
	t.Run("returns the summary", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		svc.On("GetSummary", mock.Anything, entities.MetricAppointmentsCount, utc(2024, 3, 1), utc(2024, 4, 1)).
			Return(&entities.MetricSummary{Metric: entities.MetricAppointmentsCount, Value: 12}, nil)
		req := httptest.NewRequest(http.MethodGet,
			"/analytics/summary?metric=appointments.count&start_date=2024-03-01&end_date=2024-04-01", nil)
		w := httptest.NewRecorder()

		handler.GetSummary(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(12), decodeBody(t, w)["value"])
		svc.AssertExpectations(t)
	})

	t.Run("requires a metric", func(t *testing.T) {
		handler, _ := newAnalyticsHandler()
		req := httptest.NewRequest(http.MethodGet, "/analytics/summary?start_date=2024-03-01&end_date=2024-04-01", nil)
		w := httptest.NewRecorder()

		handler.GetSummary(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid range is a bad request", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		svc.On("GetSummary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperrors.NewInvalidDateRangeError("end_date must be after start_date"))
		req := httptest.NewRequest(http.MethodGet,
			"/analytics/summary?metric=appointments.count&start_date=2024-04-01&end_date=2024-03-01", nil)
		w := httptest.NewRecorder()

		handler.GetSummary(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnalyticsHandler_GetServicesBreakdown(t *testing.T) {
	handler, svc := newAnalyticsHandler()
	svc.On("GetServicesBreakdown", mock.Anything, utc(2024, 3, 1), utc(2024, 4, 1)).
		Return(&entities.ServiceBreakdown{TotalAppointments: 4}, nil)
	req := httptest.NewRequest(http.MethodGet, "/analytics/services?start_date=2024-03-01&end_date=2024-04-01", nil)
	w := httptest.NewRecorder()

	handler.GetServicesBreakdown(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), decodeBody(t, w)["total_appointments"])
}

func TestAnalyticsHandler_Comparisons(t *testing.T) {
	t.Run("month over month", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		svc.On("ComputeMoM", mock.Anything, 2024, 3).
			Return(&entities.ComparisonResult{Kind: entities.ComparisonMonthOverMonth, CountChange: 2}, nil)
		req := httptest.NewRequest(http.MethodGet, "/analytics/mom?year=2024&month=3", nil)
		w := httptest.NewRecorder()

		handler.GetMonthOverMonth(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MOM", decodeBody(t, w)["kind"])
	})

	t.Run("month over month requires month", func(t *testing.T) {
		handler, _ := newAnalyticsHandler()
		req := httptest.NewRequest(http.MethodGet, "/analytics/mom?year=2024", nil)
		w := httptest.NewRecorder()

		handler.GetMonthOverMonth(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("year over year without month", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		svc.On("ComputeYoY", mock.Anything, 2024, (*int)(nil)).
			Return(&entities.ComparisonResult{Kind: entities.ComparisonYearOverYear}, nil)
		req := httptest.NewRequest(http.MethodGet, "/analytics/yoy?year=2024", nil)
		w := httptest.NewRecorder()

		handler.GetYearOverYear(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("year over year with month", func(t *testing.T) {
		handler, svc := newAnalyticsHandler()
		svc.On("ComputeYoY", mock.Anything, 2024, mock.MatchedBy(func(m *int) bool { return m != nil && *m == 6 })).
			Return(&entities.ComparisonResult{Kind: entities.ComparisonYearOverYear}, nil)
		req := httptest.NewRequest(http.MethodGet, "/analytics/yoy?year=2024&month=6", nil)
		w := httptest.NewRecorder()

		handler.GetYearOverYear(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("non numeric year", func(t *testing.T) {
		handler, _ := newAnalyticsHandler()
		req := httptest.NewRequest(http.MethodGet, "/analytics/yoy?year=last", nil)
		w := httptest.NewRecorder()

		handler.GetYearOverYear(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnalyticsHandler_ListMetrics(t *testing.T) {
	handler, _ := newAnalyticsHandler()
	req := httptest.NewRequest(http.MethodGet, "/analytics/metrics", nil)
	w := httptest.NewRecorder()

	handler.ListMetrics(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody(t, w)["metrics"].([]interface{})
	assert.Len(t, listed, len(metrics.MustDefaultRegistry().Metrics()))
}

func TestInsightsHandler_GetInactiveCustomers(t *testing.T) {
	t.Run("defaults limit to 50", func(t *testing.T) {
		svc := new(MockInsightsService)
		svc.On("GetInactiveCustomers", mock.Anything, 50).Return(&entities.InactiveCustomers{Threshold: 1}, nil)
		handler := handlers.NewInsightsHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/insights/inactive-customers", nil)
		w := httptest.NewRecorder()

		handler.GetInactiveCustomers(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("passes limit through", func(t *testing.T) {
		svc := new(MockInsightsService)
		svc.On("GetInactiveCustomers", mock.Anything, 5).Return(&entities.InactiveCustomers{}, nil)
		handler := handlers.NewInsightsHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/insights/inactive-customers?limit=5", nil)
		w := httptest.NewRecorder()

		handler.GetInactiveCustomers(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("rejects non numeric limit", func(t *testing.T) {
		svc := new(MockInsightsService)
		handler := handlers.NewInsightsHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/insights/inactive-customers?limit=many", nil)
		w := httptest.NewRecorder()

		handler.GetInactiveCustomers(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unclassified errors are internal", func(t *testing.T) {
		svc := new(MockInsightsService)
		svc.On("GetInactiveCustomers", mock.Anything, 50).Return(nil, errors.New("boom"))
		handler := handlers.NewInsightsHandler(svc)
		req := httptest.NewRequest(http.MethodGet, "/insights/inactive-customers", nil)
		w := httptest.NewRecorder()

		handler.GetInactiveCustomers(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", decodeBody(t, w)["error"])
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy without checks", func(t *testing.T) {
		handler := handlers.NewHealthHandler(nil)
		w := httptest.NewRecorder()

		handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", decodeBody(t, w)["status"])
	})

	t.Run("degraded when a dependency fails", func(t *testing.T) {
		handler := handlers.NewHealthHandler(map[string]handlers.Pinger{
			"store": fakePinger{},
			"redis": fakePinger{err: errors.New("connection refused")},
		})
		w := httptest.NewRecorder()

		handler.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "degraded", body["status"])
		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, "ok", checks["store"])
		assert.Equal(t, "connection refused", checks["redis"])
	})
}

func TestDebugHandler_GetCacheStats(t *testing.T) {
	handler := handlers.NewDebugHandler(fakeStats{})
	w := httptest.NewRecorder()

	handler.GetCacheStats(w, httptest.NewRequest(http.MethodGet, "/debug/cache", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(7), body["hits"])
	assert.Equal(t, float64(512), body["max_entries"])
}
