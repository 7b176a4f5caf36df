package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func serve(h http.Handler, method, path string) int {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr.Code
}

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/listings", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/query", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) })
	r.Get("/listings/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/listings/count", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("3")) })

	tests := []struct {
		method, path, route, status string
	}{
		{"POST", "/listings", "/listings", "200"},
		{"POST", "/query", "/query", "502"},
		{"GET", "/listings/abc", "/listings/{id}", "404"},
		{"GET", "/listings/def", "/listings/{id}", "404"},
		{"GET", "/listings/count", "/listings/count", "200"},
	}
	before := make(map[string]float64)
	for _, tt := range tests {
		key := tt.method + tt.route + tt.status
		if _, ok := before[key]; !ok {
			before[key] = testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status))
		}
	}
	for _, tt := range tests {
		serve(r, tt.method, tt.path)
	}

	want := map[string]float64{"POST/listings200": 1, "POST/query502": 1, "GET/listings/{id}404": 2, "GET/listings/count200": 1}
	for _, tt := range tests {
		key := tt.method + tt.route + tt.status
		got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tt.method, tt.route, tt.status)) - before[key]
		if got != want[key] {
			t.Errorf("%s %s (%s): delta = %v, want %v", tt.method, tt.route, tt.status, got, want[key])
		}
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds observations")
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/a", "/b/c", "/listings/123"} {
		serve(r, "GET", path)
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")); got < 3 {
		t.Errorf("unmatched 404s = %v, want >= 3", got)
	}
}

func TestMetricsMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	var during float64
	r.Post("/query", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(httpRequestsInFlight)
		w.WriteHeader(http.StatusOK)
	})

	serve(r, "POST", "/query")

	if during < 1 {
		t.Errorf("in-flight during request = %v, want >= 1", during)
	}
	if after := testutil.ToFloat64(httpRequestsInFlight); after != 0 {
		t.Errorf("in-flight after request = %v, want 0", after)
	}
}

func TestRouteLabel_NoRouteContext(t *testing.T) {
	if got := routeLabel(httptest.NewRequest("GET", "/", http.NoBody)); got != unmatchedRoute {
		t.Errorf("routeLabel() = %q, want %q", got, unmatchedRoute)
	}
}

func TestRegisteredMetrics_ExposedViaPromhttp(t *testing.T) {
	Register()
	Register() // idempotent

	IngestItemsTotal.WithLabelValues("added").Inc()
	SearchTotal.WithLabelValues("scan").Inc()

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	for _, name := range []string{"estaterag_ingest_items_total", "estaterag_search_total", "estaterag_http_requests_in_flight"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
