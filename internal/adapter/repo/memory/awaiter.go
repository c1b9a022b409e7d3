package memory

import (
	"context"
	"errors"
	"fmt"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

type waiter struct {
	filter ports.EventFilter
	// ch has room for exactly one event; a waiter is removed from the
	// store in the same critical section that fills it.
	ch chan relay.Event
}

func (s *Store) notifyLocked(e relay.Event) {
	for id, w := range s.waiters {
		if !w.filter.Match(e) {
			continue
		}
		w.ch <- e
		delete(s.waiters, id)
	}
}

func (s *Store) addWaiter(w *waiter) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextWaiter++
	s.waiters[s.nextWaiter] = w
	return s.nextWaiter
}

func (s *Store) removeWaiter(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.waiters, id)
}

func (s *Store) PendingWaiters() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.waiters)
}

// Await must not be called from inside RunInTx.
func (l EventLog) Await(ctx context.Context, filter ports.EventFilter) (relay.Event, error) {
	w := &waiter{filter: filter, ch: make(chan relay.Event, 1)}
	id := l.store.addWaiter(w)
	defer l.store.removeWaiter(id)

	select {
	case e := <-w.ch:
		return e, nil
	case <-ctx.Done():
		select {
		case e := <-w.ch:
			return e, nil
		default:
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return relay.Event{}, fmt.Errorf("await event: %w", ports.ErrTimeout)
		}
		return relay.Event{}, ctx.Err()
	}
}
