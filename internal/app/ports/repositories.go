package ports

import (
	"context"
	"time"

	"glassrelay/internal/domain/relay"
)

// TxManager runs fn atomically against one backing store. A call made with
// a ctx already inside RunInTx joins the outer transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ReadResult struct {
	Events    []relay.Event
	NewCursor uint64
	// Gap is set when events after the requested cursor were evicted
	// before this read.
	Gap       bool
	Oldest    uint64
	HighWater uint64
}

type LogStats struct {
	Retained   int
	Capacity   int
	HighWater  uint64
	Oldest     uint64
	ByType     map[relay.EventType]int
	TotalAdded uint64
}

// EventFilter selects events for Await. Empty fields match anything.
type EventFilter struct {
	DeviceID string
	Type     relay.EventType
}

func (f EventFilter) Match(e relay.Event) bool {
	if f.DeviceID != "" && f.DeviceID != e.DeviceID {
		return false
	}
	if f.Type != "" && f.Type != e.Type {
		return false
	}
	return true
}

// DeviceQuery selects the newest events of one device. Zero fields match
// anything; From and To bound the producer timestamp inclusively.
type DeviceQuery struct {
	DeviceID string
	Type     relay.EventType
	From     time.Time
	To       time.Time
	Limit    int
}

func (q DeviceQuery) Match(e relay.Event) bool {
	switch {
	case e.DeviceID != q.DeviceID:
		return false
	case q.Type != "" && e.Type != q.Type:
		return false
	case !q.From.IsZero() && e.Timestamp.Before(q.From):
		return false
	case !q.To.IsZero() && e.Timestamp.After(q.To):
		return false
	}
	return true
}

type EventLog interface {
	Append(ctx context.Context, event relay.Event) (relay.Event, error)
	ReadSince(ctx context.Context, cursor uint64, limit int) (ReadResult, error)
	ListByDevice(ctx context.Context, q DeviceQuery) ([]relay.Event, error)
	Stats(ctx context.Context) (LogStats, error)
	Clear(ctx context.Context) error
}

// EventAwaiter resolves once with the next appended event matching the
// filter, or fails with ErrTimeout when ctx ends first.
type EventAwaiter interface {
	Await(ctx context.Context, filter EventFilter) (relay.Event, error)
}

type SessionRegistry interface {
	Observe(ctx context.Context, event relay.Event) (relay.Session, bool, error)
	Get(ctx context.Context, deviceID string) (relay.Session, error)
	List(ctx context.Context) ([]relay.Session, error)
	CountActive(ctx context.Context, now time.Time) (int, error)
}

// EventArchive is a diagnostic mirror of ingested events. It is never used
// to rebuild the event log.
type EventArchive interface {
	Append(ctx context.Context, events []relay.Event) error
	ListByDevice(ctx context.Context, q DeviceQuery) ([]relay.Event, error)
}

type SessionJournal interface {
	Opened(ctx context.Context, session relay.Session) error
	Closed(ctx context.Context, deviceID string, endedAt time.Time) error
}
