package prom

import (
	"testing"

	"glassrelay/internal/domain/relay"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder error: %v", err)
	}
	r.RecordRequest("GET /events", 200)
	r.RecordIngest(relay.EventVoiceInput)
	r.RecordIngest(relay.EventVoiceInput)
	r.RecordPoll(4, true)
	r.RecordDisplay(relay.DisplayShow, false)

	if got := testutil.ToFloat64(r.requests.WithLabelValues("GET /events", "200")); got != 1 {
		t.Fatalf("requests mismatch: got=%v", got)
	}
	if got := testutil.ToFloat64(r.ingested.WithLabelValues("voice_input")); got != 2 {
		t.Fatalf("ingested mismatch: got=%v", got)
	}
	if got := testutil.ToFloat64(r.polledEvents); got != 4 {
		t.Fatalf("polled events mismatch: got=%v", got)
	}
	if got := testutil.ToFloat64(r.display.WithLabelValues("display", "failed")); got != 1 {
		t.Fatalf("display failures mismatch: got=%v", got)
	}
}

func TestNewRecorder_DuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
