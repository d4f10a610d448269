package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/items/{id}", "GET", "418"))
	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/items/{id}", "GET", "418"))
	if after-before != 3 {
		t.Fatalf("expected 3 requests under the route pattern, got %v", after-before)
	}
}

func TestPrometheusEndpointExposesRouterMetrics(t *testing.T) {
	h := NewMux(&mockService{})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("routerd_http_requests_total")) {
		t.Fatalf("expected routerd_http_requests_total in exposition")
	}
}

func TestRejectedCounter(t *testing.T) {
	before := testutil.ToFloat64(chatRejectedTotal.WithLabelValues("content_type"))
	postChat(t, NewMux(&mockService{}), "text/plain", `{}`)
	if d := testutil.ToFloat64(chatRejectedTotal.WithLabelValues("content_type")) - before; d != 1 {
		t.Fatalf("expected one rejection, got %v", d)
	}
	incrementRejected("")
	if testutil.ToFloat64(chatRejectedTotal.WithLabelValues("unspecified")) < 1 {
		t.Fatalf("empty reason should map to unspecified")
	}
}
