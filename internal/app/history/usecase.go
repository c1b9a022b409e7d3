package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500

	SourceArchive = "archive"
	SourceMemory  = "memory"
)

var ErrInvalidRequest = errors.New("invalid history request")

type UseCase struct {
	Archive ports.EventArchive
	Log     ports.EventLog
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" || req.Limit < 0 || req.OccurredFrom < 0 || req.OccurredTo < 0 {
		return Response{}, ErrInvalidRequest
	}
	var typ relay.EventType
	if t := strings.TrimSpace(req.Type); t != "" {
		typ = relay.EventType(t)
		if !typ.Valid() {
			return Response{}, ErrInvalidRequest
		}
	}
	limit := req.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := ports.DeviceQuery{DeviceID: deviceID, Type: typ, Limit: limit}
	if req.OccurredFrom > 0 {
		q.From = time.Unix(req.OccurredFrom, 0).UTC()
	}
	if req.OccurredTo > 0 {
		q.To = time.Unix(req.OccurredTo, 0).UTC()
	}

	source := SourceMemory
	var (
		events []relay.Event
		err    error
	)
	if u.Archive != nil {
		source = SourceArchive
		events, err = u.Archive.ListByDevice(ctx, q)
	} else {
		events, err = u.Log.ListByDevice(ctx, q)
	}
	if errors.Is(err, ports.ErrNotFound) {
		events, err = nil, nil
	}
	if err != nil {
		return Response{}, err
	}
	if events == nil {
		events = []relay.Event{}
	}
	return Response{DeviceID: deviceID, Events: events, Count: len(events), Source: source}, nil
}
