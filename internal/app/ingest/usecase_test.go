package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"glassrelay/internal/adapter/repo/memory"
	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

func newUseCase(now time.Time) (UseCase, memory.EventLog, memory.SessionRegistry) {
	store := memory.NewStore(memory.Options{Capacity: 100, SessionTimeout: time.Minute, Now: func() time.Time { return now }})
	log := memory.NewEventLog(store)
	reg := memory.NewSessionRegistry(store)
	return UseCase{
		TxManager: memory.NewTxManager(store),
		Log:       log,
		Sessions:  reg,
		Now:       func() time.Time { return now },
	}, log, reg
}

func TestUseCase_AppendsVoiceInput(t *testing.T) {
	now := time.Unix(1700000000, 0)
	uc, log, _ := newUseCase(now)

	out, err := uc.Execute(context.Background(), Request{
		Type:     "voice_input",
		DeviceID: "d1",
		Data:     relay.Data{"transcript": relay.StringValue("hello"), "lang": relay.StringValue("en")},
	})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.EventID != 1 {
		t.Fatalf("event id mismatch: got=%d want=1", out.EventID)
	}

	res, _ := log.ReadSince(context.Background(), 0, 10)
	if len(res.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(res.Events))
	}
	e := res.Events[0]
	if got, _ := e.Data.String("lang"); got != "en" {
		t.Fatalf("unknown field not preserved: %+v", e.Data)
	}
	if !e.Timestamp.Equal(now) || !e.ReceivedAt.Equal(now) {
		t.Fatalf("timestamps mismatch: %+v", e)
	}
}

func TestUseCase_KeepsProducerTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	uc, _, _ := newUseCase(now)
	produced := now.Add(-3 * time.Second).UTC()

	cases := []struct {
		name string
		ts   relay.Value
		want time.Time
	}{
		{"rfc3339", relay.StringValue(produced.Format(time.RFC3339)), produced},
		{"naive iso", relay.StringValue(produced.Format("2006-01-02T15:04:05.000000")), produced},
		{"unix seconds", relay.NumberValue(float64(produced.Unix())), produced},
		{"absent", relay.Value{}, now},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := uc.Execute(context.Background(), Request{Type: "app_activated", DeviceID: "d1", Timestamp: tc.ts})
			if err != nil {
				t.Fatalf("Execute error: %v", err)
			}
			if !out.Event.Timestamp.Equal(tc.want) {
				t.Fatalf("timestamp mismatch: got=%v want=%v", out.Event.Timestamp, tc.want)
			}
		})
	}
}

func TestUseCase_RejectsUnreadableTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	uc, log, _ := newUseCase(now)

	_, err := uc.Execute(context.Background(), Request{Type: "app_activated", DeviceID: "d1", Timestamp: relay.StringValue("last tuesday")})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "timestamp" {
		t.Fatalf("expected timestamp ValidationError, got %v", err)
	}
	if stats, _ := log.Stats(context.Background()); stats.HighWater != 0 {
		t.Fatalf("rejected event was appended: high_water=%d", stats.HighWater)
	}
}

func TestUseCase_RejectsInvalidRequests(t *testing.T) {
	cases := []struct {
		name  string
		req   Request
		field string
	}{
		{"unknown type", Request{Type: "battery_low", DeviceID: "d1"}, "type"},
		{"missing type", Request{DeviceID: "d1"}, "type"},
		{"missing device", Request{Type: "app_activated", DeviceID: "  "}, "device_id"},
		{"voice without transcript", Request{Type: "voice_input", DeviceID: "d1", Data: relay.Data{}}, "data"},
		{"bad gesture", Request{Type: "gesture", DeviceID: "d1", Data: relay.Data{"gesture_type": relay.StringValue("pinch")}}, "data"},
		{"connected not bool", Request{Type: "connection_status", DeviceID: "d1", Data: relay.Data{"connected": relay.StringValue("yes")}}, "data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, log, _ := newUseCase(time.Unix(1700000000, 0))
			_, err := uc.Execute(context.Background(), tc.req)
			if !errors.Is(err, ports.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("expected field %q, got %v", tc.field, err)
			}
			if st, _ := log.Stats(context.Background()); st.HighWater != 0 {
				t.Fatalf("rejected event was appended")
			}
		})
	}
}

func TestUseCase_UpdatesSessionRegistry(t *testing.T) {
	uc, _, reg := newUseCase(time.Unix(1700000000, 0))
	ctx := context.Background()

	if _, err := uc.Execute(ctx, Request{Type: "app_activated", DeviceID: "d1"}); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if s, err := reg.Get(ctx, "d1"); err != nil || !s.Active {
		t.Fatalf("expected active session, got=%+v err=%v", s, err)
	}
	if _, err := uc.Execute(ctx, Request{Type: "app_deactivated", DeviceID: "d1"}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if s, _ := reg.Get(ctx, "d1"); s.Active {
		t.Fatalf("expected inactive session")
	}
}

type fakeJournal struct {
	opened []string
	closed []string
}

func (j *fakeJournal) Opened(_ context.Context, s relay.Session) error {
	j.opened = append(j.opened, s.DeviceID)
	return nil
}

func (j *fakeJournal) Closed(_ context.Context, deviceID string, _ time.Time) error {
	j.closed = append(j.closed, deviceID)
	return nil
}

type failingArchive struct {
	calls int
}

func (a *failingArchive) Append(_ context.Context, _ []relay.Event) error {
	a.calls++
	return errors.New("db down")
}

func (a *failingArchive) ListByDevice(_ context.Context, _ ports.DeviceQuery) ([]relay.Event, error) {
	return nil, nil
}

func TestUseCase_JournalsTransitions(t *testing.T) {
	uc, _, _ := newUseCase(time.Unix(1700000000, 0))
	j := &fakeJournal{}
	uc.Journal = j
	ctx := context.Background()

	_, _ = uc.Execute(ctx, Request{Type: "connection_status", DeviceID: "d1", Data: relay.Data{"connected": relay.BoolValue(true)}})
	_, _ = uc.Execute(ctx, Request{Type: "voice_input", DeviceID: "d1", Data: relay.Data{"transcript": relay.StringValue("x")}})
	_, _ = uc.Execute(ctx, Request{Type: "connection_status", DeviceID: "d1", Data: relay.Data{"connected": relay.BoolValue(false)}})

	if len(j.opened) != 1 || len(j.closed) != 1 {
		t.Fatalf("unexpected journal calls: opened=%v closed=%v", j.opened, j.closed)
	}
}

func TestUseCase_ArchiveFailureDoesNotFailIngest(t *testing.T) {
	uc, _, _ := newUseCase(time.Unix(1700000000, 0))
	archive := &failingArchive{}
	uc.Archive = archive

	out, err := uc.Execute(context.Background(), Request{Type: "app_activated", DeviceID: "d1"})
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if out.EventID != 1 || archive.calls != 1 {
		t.Fatalf("unexpected result: id=%d calls=%d", out.EventID, archive.calls)
	}
}
