package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ports.ErrValidation
}

// PayloadValidator checks the producer's data object for a given type
// before it is turned into an event.
type PayloadValidator interface {
	Validate(eventType relay.EventType, data relay.Data) error
}

type UseCase struct {
	TxManager ports.TxManager
	Log       ports.EventLog
	Sessions  ports.SessionRegistry
	Schemas   PayloadValidator
	Archive   ports.EventArchive
	Journal   ports.SessionJournal
	ArchiveTx ports.TxManager
	Metrics   ports.RelayMetrics
	Now       func() time.Time
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	evt, err := u.normalize(req)
	if err != nil {
		if u.Metrics != nil {
			u.Metrics.RecordRejected()
		}
		return Response{}, err
	}

	var (
		stored   relay.Event
		before   relay.Session
		existed  bool
		after    relay.Session
		tracked  bool
		sessions = u.Sessions
	)
	err = u.TxManager.RunInTx(ctx, func(ctx context.Context) error {
		if sessions != nil {
			prev, getErr := sessions.Get(ctx, evt.DeviceID)
			switch {
			case getErr == nil:
				before, existed = prev, true
			case !errors.Is(getErr, ports.ErrNotFound):
				return getErr
			}
			var obsErr error
			after, tracked, obsErr = sessions.Observe(ctx, evt)
			if obsErr != nil {
				return obsErr
			}
		}
		var appendErr error
		stored, appendErr = u.Log.Append(ctx, evt)
		return appendErr
	})
	if err != nil {
		return Response{}, fmt.Errorf("ingest %s: %w", evt.Type, err)
	}

	if u.Metrics != nil {
		u.Metrics.RecordIngest(stored.Type)
	}
	u.mirror(ctx, stored, before, existed, after, tracked)
	return Response{EventID: stored.Sequence, Event: stored}, nil
}

func (u UseCase) normalize(req Request) (relay.Event, error) {
	typ := relay.EventType(strings.TrimSpace(req.Type))
	if typ == "" {
		return relay.Event{}, &ValidationError{Field: "type", Reason: "is required"}
	}
	if !typ.Valid() {
		return relay.Event{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown event type %q", typ)}
	}
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return relay.Event{}, &ValidationError{Field: "device_id", Reason: "is required"}
	}

	data := req.Data.Clone()
	if u.Schemas != nil {
		if err := u.Schemas.Validate(typ, data); err != nil {
			return relay.Event{}, &ValidationError{Field: "data", Reason: err.Error()}
		}
	}

	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	received := nowFn().UTC()
	ts := received
	produced, ok, err := relay.ParseTimestamp(req.Timestamp)
	if err != nil {
		return relay.Event{}, &ValidationError{Field: "timestamp", Reason: err.Error()}
	}
	if ok {
		ts = produced
	}

	evt := relay.Event{
		Type:       typ,
		Data:       data,
		DeviceID:   deviceID,
		Timestamp:  ts,
		ReceivedAt: received,
	}
	if err := evt.CheckPayload(); err != nil {
		return relay.Event{}, &ValidationError{Field: "data", Reason: err.Error()}
	}
	return evt, nil
}

// mirror copies the committed event and any session transition to the
// archive. Failures are logged and never reach the producer.
func (u UseCase) mirror(ctx context.Context, evt relay.Event, before relay.Session, existed bool, after relay.Session, tracked bool) {
	if u.Archive == nil && u.Journal == nil {
		return
	}
	run := func(ctx context.Context) error {
		if u.Archive != nil {
			if err := u.Archive.Append(ctx, []relay.Event{evt}); err != nil {
				return fmt.Errorf("archive event %d: %w", evt.Sequence, err)
			}
		}
		if u.Journal == nil || !tracked {
			return nil
		}
		wasActive := existed && before.Active
		switch {
		case after.Active && !wasActive:
			return u.Journal.Opened(ctx, after)
		case !after.Active && wasActive:
			return u.Journal.Closed(ctx, evt.DeviceID, evt.ReceivedAt)
		}
		return nil
	}
	var err error
	if u.ArchiveTx != nil {
		err = u.ArchiveTx.RunInTx(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		hlog.CtxWarnf(ctx, "archive mirror failed: device=%s seq=%d err=%v", evt.DeviceID, evt.Sequence, err)
	}
}
