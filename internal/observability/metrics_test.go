package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics("evently")

	m.RecordRequest("/reservations", "POST", 201, 15*time.Millisecond)
	m.RecordRequest("/reservations", "POST", 201, 5*time.Millisecond)
	m.RecordError("/reservations", "POST", "CONFLICT")
	m.RecordReservationTransition("PENDING")
	m.RecordReservationTransition("CONFIRMED")
	m.RecordReservationTransition("CONFIRMED")
	m.RecordTicketIssued()

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/reservations", "POST", "201")); got != 2 {
		t.Errorf("requests = %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("/reservations", "POST", "CONFLICT")); got != 1 {
		t.Errorf("errors = %v", got)
	}
	if got := testutil.ToFloat64(m.reservations.WithLabelValues("CONFIRMED")); got != 2 {
		t.Errorf("confirmed = %v", got)
	}
	if got := testutil.ToFloat64(m.tickets); got != 1 {
		t.Errorf("tickets = %v", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordReservationTransition("PENDING")
	m.RecordTicketIssued()
}

func TestMetricsHandlerExposition(t *testing.T) {
	m := NewMetrics("Evently App")
	m.RecordTicketIssued()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "evently_app_tickets_issued_total 1") {
		t.Errorf("exposition missing ticket counter:\n%s", body)
	}
}

func TestSanitizeNamespace(t *testing.T) {
	tests := map[string]string{
		"evently":     "evently",
		"Evently-API": "evently_api",
		"  ":          "evently",
	}
	for in, want := range tests {
		if got := sanitizeNamespace(in); got != want {
			t.Errorf("sanitizeNamespace(%q) = %q, want %q", in, got, want)
		}
	}
}
