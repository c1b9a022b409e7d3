package status

import (
	"context"
	"time"

	"glassrelay/internal/app/ports"
)

const ServiceName = "glassrelay"

type UseCase struct {
	Log       ports.EventLog
	Sessions  ports.SessionRegistry
	Metrics   ports.MetricsReader
	StartedAt time.Time
	Now       func() time.Time
}

func (u UseCase) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u UseCase) Health(ctx context.Context) (HealthResponse, error) {
	st, err := u.Log.Stats(ctx)
	if err != nil {
		return HealthResponse{}, err
	}
	active, err := u.Sessions.CountActive(ctx, u.now())
	if err != nil {
		return HealthResponse{}, err
	}
	return HealthResponse{Status: "healthy", EventsCount: st.Retained, ActiveSessions: active}, nil
}

func (u UseCase) Info(ctx context.Context) (InfoResponse, error) {
	h, err := u.Health(ctx)
	if err != nil {
		return InfoResponse{}, err
	}
	return InfoResponse{
		Service:        ServiceName,
		Status:         h.Status,
		EventsQueued:   h.EventsCount,
		ActiveSessions: h.ActiveSessions,
		Timestamp:      u.now().UTC(),
	}, nil
}

// Stats is diagnostic only; nothing in the relay reads it back.
func (u UseCase) Stats(ctx context.Context) (StatsResponse, error) {
	now := u.now()
	st, err := u.Log.Stats(ctx)
	if err != nil {
		return StatsResponse{}, err
	}
	active, err := u.Sessions.CountActive(ctx, now)
	if err != nil {
		return StatsResponse{}, err
	}

	out := StatsResponse{
		ActiveSessions:  active,
		TotalEvents:     st.Retained,
		EventsIngested:  st.TotalAdded,
		EventTypes:      make(map[string]int, len(st.ByType)),
		QueueCapacity:   st.Capacity,
		HighWater:       st.HighWater,
		OldestIndex:     st.Oldest,
		RequestsByRoute: map[string]uint64{},
		Timestamp:       now.UTC(),
	}
	for k, v := range st.ByType {
		out.EventTypes[string(k)] = v
	}
	if !u.StartedAt.IsZero() {
		out.UptimeSeconds = int64(now.Sub(u.StartedAt).Seconds())
	}
	if u.Metrics != nil {
		snap := u.Metrics.Snapshot()
		out.TotalRequests = snap.TotalRequests
		out.RequestsByRoute = snap.RequestsByRoute
		out.Display = DisplayStats{Sent: snap.DisplaySent, Failed: snap.DisplayFailed}
		out.Rejected = snap.Rejected
	}
	return out, nil
}
