package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

func TestAwait_ResolvesWithNextMatchingEvent(t *testing.T) {
	store := NewStore(Options{Capacity: 10})
	log := NewEventLog(store)

	done := make(chan relay.Event, 1)
	errs := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		e, err := log.Await(ctx, ports.EventFilter{DeviceID: "d2", Type: relay.EventVoiceInput})
		if err != nil {
			errs <- err
			return
		}
		done <- e
	}()

	waitForWaiters(t, store, 1)
	_, _ = log.Append(context.Background(), voice("d1", "other device"))
	_, _ = log.Append(context.Background(), voice("d2", "mine"))

	select {
	case e := <-done:
		if got, _ := e.Data.String(relay.FieldTranscript); got != "mine" {
			t.Fatalf("resolved with wrong event: %+v", e)
		}
		if e.Sequence != 2 {
			t.Fatalf("sequence mismatch: got=%d want=2", e.Sequence)
		}
	case err := <-errs:
		t.Fatalf("await failed: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("await never resolved")
	}
	if n := store.PendingWaiters(); n != 0 {
		t.Fatalf("expected waiter removed, got %d pending", n)
	}
}

func TestAwait_TimesOut(t *testing.T) {
	store := NewStore(Options{Capacity: 10})
	log := NewEventLog(store)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := log.Await(ctx, ports.EventFilter{})
	if !errors.Is(err, ports.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if n := store.PendingWaiters(); n != 0 {
		t.Fatalf("timed out waiter left behind: %d", n)
	}
}

func TestAwait_CancelIsNotTimeout(t *testing.T) {
	log := NewEventLog(NewStore(Options{Capacity: 10}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := log.Await(ctx, ports.EventFilter{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAwait_FiresOnce(t *testing.T) {
	store := NewStore(Options{Capacity: 10})
	w := &waiter{ch: make(chan relay.Event, 1)}
	store.addWaiter(w)

	log := NewEventLog(store)
	_, _ = log.Append(context.Background(), voice("d1", "a"))
	_, _ = log.Append(context.Background(), voice("d1", "b"))

	if got := len(w.ch); got != 1 {
		t.Fatalf("expected exactly one delivery, got %d", got)
	}
	e := <-w.ch
	if e.Sequence != 1 {
		t.Fatalf("expected first event, got sequence %d", e.Sequence)
	}
}

func waitForWaiters(t *testing.T, store *Store, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for store.PendingWaiters() < n {
		if time.Now().After(deadline) {
			t.Fatalf("waiters never registered")
		}
		time.Sleep(time.Millisecond)
	}
}
