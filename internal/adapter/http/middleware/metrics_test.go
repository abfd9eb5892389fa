package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/lnstable/internal/infrastructure/metrics"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		pattern    string
		statusCode int
	}{
		{
			name:       "parameterised path",
			method:     http.MethodGet,
			path:       "/api/transaction/01HZX",
			pattern:    "/api/transaction/{txid}",
			statusCode: http.StatusNotFound,
		},
		{
			name:       "static path",
			method:     http.MethodPost,
			path:       "/api/create",
			pattern:    "/api/create",
			statusCode: http.StatusCreated,
		},
		{
			name:       "unknown path",
			method:     http.MethodGet,
			path:       "/nope",
			pattern:    "unmatched",
			statusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())

			r := chi.NewRouter()
			r.Use(Metrics(m))
			handler := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(tc.statusCode) }
			r.Get("/api/transaction/{txid}", handler)
			r.Post("/api/create", handler)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, nil))

			if rr.Code != tc.statusCode {
				t.Fatalf("expected status %d, got %d", tc.statusCode, rr.Code)
			}

			counter := m.HTTPRequests.WithLabelValues(tc.method, tc.pattern, strconv.Itoa(tc.statusCode))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
			if got := testutil.CollectAndCount(m.HTTPDuration); got != 1 {
				t.Fatalf("expected one duration series, got %d", got)
			}
		})
	}
}
