package memory

import (
	"context"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

type EventLog struct {
	store *Store
}

func NewEventLog(store *Store) EventLog {
	return EventLog{store: store}
}

func (l EventLog) Append(ctx context.Context, event relay.Event) (relay.Event, error) {
	unlock := l.store.lock(ctx)
	defer unlock()
	return l.store.appendLocked(event), nil
}

func (l EventLog) ReadSince(ctx context.Context, cursor uint64, limit int) (ports.ReadResult, error) {
	unlock := l.store.rlock(ctx)
	defer unlock()

	s := l.store
	oldest := s.oldestLocked()
	res := ports.ReadResult{
		NewCursor: cursor,
		Gap:       cursor < oldest-1,
		Oldest:    oldest,
		HighWater: s.highWater,
	}
	if cursor >= s.highWater || s.size == 0 {
		return res, nil
	}

	start := cursor + 1
	if start < oldest {
		start = oldest
	}
	n := int(s.highWater - start + 1)
	if limit > 0 && n > limit {
		n = limit
	}
	offset := int(start - oldest)
	res.Events = make([]relay.Event, 0, n)
	for i := 0; i < n; i++ {
		res.Events = append(res.Events, s.at(offset+i))
	}
	res.NewCursor = res.Events[n-1].Sequence
	return res, nil
}

// ListByDevice returns the newest retained events matching q, oldest first.
func (l EventLog) ListByDevice(ctx context.Context, q ports.DeviceQuery) ([]relay.Event, error) {
	unlock := l.store.rlock(ctx)
	defer unlock()

	s := l.store
	out := []relay.Event{}
	for i := s.size - 1; i >= 0; i-- {
		e := s.at(i)
		if !q.Match(e) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (l EventLog) Stats(ctx context.Context) (ports.LogStats, error) {
	unlock := l.store.rlock(ctx)
	defer unlock()

	s := l.store
	byType := make(map[relay.EventType]int, len(s.byType))
	for k, v := range s.byType {
		byType[k] = v
	}
	return ports.LogStats{
		Retained:   s.size,
		Capacity:   len(s.ring),
		HighWater:  s.highWater,
		Oldest:     s.oldestLocked(),
		ByType:     byType,
		TotalAdded: s.totalAdded,
	}, nil
}

// Clear drops every retained event. Sequence numbers continue from the
// current high-water mark.
func (l EventLog) Clear(ctx context.Context) error {
	unlock := l.store.lock(ctx)
	defer unlock()
	l.store.clearLocked()
	return nil
}
