package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000

	MinAwaitTimeout     = time.Second
	MaxAwaitTimeout     = 30 * time.Second
	DefaultAwaitTimeout = 10 * time.Second
)

var ErrInvalidRequest = errors.New("invalid poll request")

type UseCase struct {
	Log          ports.EventLog
	Metrics      ports.RelayMetrics
	DefaultLimit int
	MaxLimit     int
}

// Execute never blocks: it returns whatever is retained after Since.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.Limit < 0 {
		return Response{}, fmt.Errorf("%w: limit must not be negative", ErrInvalidRequest)
	}
	limit := u.clampLimit(req.Limit)

	res, err := u.Log.ReadSince(ctx, req.Since, limit)
	if err != nil {
		return Response{}, err
	}
	events := res.Events
	if events == nil {
		events = []relay.Event{}
	}
	if u.Metrics != nil {
		u.Metrics.RecordPoll(len(events), res.Gap)
	}
	return Response{
		Events:      events,
		Count:       len(events),
		LastIndex:   res.NewCursor,
		Gap:         res.Gap,
		OldestIndex: res.Oldest,
		HighWater:   res.HighWater,
	}, nil
}

// Clear drops every retained event. Sequence numbers keep counting from the
// previous high-water mark so existing cursors stay valid.
func (u UseCase) Clear(ctx context.Context) (ClearResponse, error) {
	stats, err := u.Log.Stats(ctx)
	if err != nil {
		return ClearResponse{}, err
	}
	if err := u.Log.Clear(ctx); err != nil {
		return ClearResponse{}, err
	}
	return ClearResponse{Status: "cleared", Cleared: stats.Retained, HighWater: stats.HighWater}, nil
}

func (u UseCase) clampLimit(limit int) int {
	def := u.DefaultLimit
	if def <= 0 {
		def = DefaultLimit
	}
	ceiling := u.MaxLimit
	if ceiling <= 0 {
		ceiling = MaxLimit
	}
	if limit == 0 {
		limit = def
	}
	if limit > ceiling {
		limit = ceiling
	}
	return limit
}

type AwaitUseCase struct {
	Awaiter ports.EventAwaiter
}

// Execute waits for the next matching event appended after the call starts.
// It is separate from the poll contract and always bounded by a timeout.
func (u AwaitUseCase) Execute(ctx context.Context, req AwaitRequest) (AwaitResponse, error) {
	filter := ports.EventFilter{DeviceID: strings.TrimSpace(req.DeviceID)}
	if t := strings.TrimSpace(req.Type); t != "" {
		typ := relay.EventType(t)
		if !typ.Valid() {
			return AwaitResponse{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidRequest, t)
		}
		filter.Type = typ
	}

	timeout := req.Timeout
	switch {
	case timeout == 0:
		timeout = DefaultAwaitTimeout
	case timeout < MinAwaitTimeout:
		timeout = MinAwaitTimeout
	case timeout > MaxAwaitTimeout:
		timeout = MaxAwaitTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	evt, err := u.Awaiter.Await(ctx, filter)
	if err != nil {
		return AwaitResponse{}, err
	}
	return AwaitResponse{Event: evt}, nil
}
