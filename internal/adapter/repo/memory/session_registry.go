package memory

import (
	"context"
	"sort"
	"time"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

type SessionRegistry struct {
	store *Store
}

func NewSessionRegistry(store *Store) SessionRegistry {
	return SessionRegistry{store: store}
}

// Observe feeds one event into the device's state machine. tracked is false
// when the device has no session and the event does not start one.
func (r SessionRegistry) Observe(ctx context.Context, event relay.Event) (relay.Session, bool, error) {
	unlock := r.store.lock(ctx)
	defer unlock()

	s := r.store
	s.sweepSessionsLocked(event.ReceivedAt)

	current, ok := s.sessions[event.DeviceID]
	if !ok {
		started, created := relay.StartSession(event)
		if !created {
			return relay.Session{}, false, nil
		}
		s.sessions[event.DeviceID] = started
		return started, true, nil
	}
	next := current.Apply(event, s.sessionTimeout)
	s.sessions[event.DeviceID] = next
	return next, true, nil
}

func (r SessionRegistry) Get(ctx context.Context, deviceID string) (relay.Session, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	sess, ok := r.store.sessions[deviceID]
	if !ok {
		return relay.Session{}, ports.ErrNotFound
	}
	return r.view(sess, r.store.now()), nil
}

func (r SessionRegistry) List(ctx context.Context) ([]relay.Session, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	now := r.store.now()
	out := make([]relay.Session, 0, len(r.store.sessions))
	for _, sess := range r.store.sessions {
		out = append(out, r.view(sess, now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out, nil
}

func (r SessionRegistry) CountActive(ctx context.Context, now time.Time) (int, error) {
	unlock := r.store.rlock(ctx)
	defer unlock()

	n := 0
	for _, sess := range r.store.sessions {
		if sess.ActiveAt(now, r.store.sessionTimeout) {
			n++
		}
	}
	return n, nil
}

func (r SessionRegistry) view(sess relay.Session, now time.Time) relay.Session {
	sess.Active = sess.ActiveAt(now, r.store.sessionTimeout)
	return sess
}
