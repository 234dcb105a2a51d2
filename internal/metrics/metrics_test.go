package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveView("api_view", 2*time.Millisecond)
	m.ObserveView("api_view", time.Millisecond)
	m.ObserveView("page", time.Millisecond)
	m.IncExport()
	m.CatalogLoaded(7)
	m.CatalogFailed()

	if got := testutil.ToFloat64(m.views.WithLabelValues("api_view")); got != 2 {
		t.Errorf("api_view views = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.exports); got != 1 {
		t.Errorf("exports = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.catalogRows); got != 7 {
		t.Errorf("catalog_rows = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.reloads.WithLabelValues("error")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	m.ObserveView("page", time.Millisecond)
	m.IncExport()
	m.IncRateLimited()
	m.CatalogLoaded(1)
	m.CatalogFailed()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncExport()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "riskboard_exports_total 1") {
		t.Errorf("exposition missing exports counter:\n%s", body)
	}
}
