package sessions

import (
	"context"
	"errors"
	"strings"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

const RecentEventLimit = 10

var ErrInvalidRequest = errors.New("invalid session request")

type UseCase struct {
	Registry ports.SessionRegistry
	Log      ports.EventLog
}

func (u UseCase) List(ctx context.Context) (ListResponse, error) {
	all, err := u.Registry.List(ctx)
	if err != nil {
		return ListResponse{}, err
	}
	out := ListResponse{Sessions: make([]View, 0, len(all))}
	for _, s := range all {
		out.Sessions = append(out.Sessions, view(s))
		if s.Active {
			out.Active++
		}
	}
	out.Count = len(out.Sessions)
	return out, nil
}

func (u UseCase) Get(ctx context.Context, deviceID string) (DetailResponse, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return DetailResponse{}, ErrInvalidRequest
	}
	s, err := u.Registry.Get(ctx, deviceID)
	if err != nil {
		return DetailResponse{}, err
	}
	recent := []relay.Event{}
	if u.Log != nil {
		recent, err = u.Log.ListByDevice(ctx, ports.DeviceQuery{DeviceID: deviceID, Limit: RecentEventLimit})
		if err != nil {
			return DetailResponse{}, err
		}
	}
	return DetailResponse{Session: view(s), RecentEvents: recent}, nil
}

func view(s relay.Session) View {
	state := relay.SessionInactive
	if s.Active {
		state = relay.SessionActive
	}
	return View{Session: s, State: state}
}
