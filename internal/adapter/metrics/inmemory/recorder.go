package inmemory

import (
	"sync"

	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

type Recorder struct {
	mu            sync.Mutex
	requests      uint64
	byRoute       map[string]uint64
	serverErrors  uint64
	ingested      uint64
	byType        map[string]uint64
	rejected      uint64
	polls         uint64
	polledEvents  uint64
	pollGaps      uint64
	displaySent   uint64
	displayFailed uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byRoute: map[string]uint64{},
		byType:  map[string]uint64{},
	}
}

func (r *Recorder) RecordRequest(route string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	r.byRoute[route]++
	if status >= 500 {
		r.serverErrors++
	}
}

func (r *Recorder) RecordIngest(eventType relay.EventType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ingested++
	r.byType[string(eventType)]++
}

func (r *Recorder) RecordRejected() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
}

func (r *Recorder) RecordPoll(returned int, gap bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.polls++
	r.polledEvents += uint64(returned)
	if gap {
		r.pollGaps++
	}
}

func (r *Recorder) RecordDisplay(_ relay.DisplayAction, delivered bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if delivered {
		r.displaySent++
		return
	}
	r.displayFailed++
}

func (r *Recorder) Snapshot() ports.MetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := ports.MetricsSnapshot{
		TotalRequests:   r.requests,
		RequestsByRoute: make(map[string]uint64, len(r.byRoute)),
		ServerErrors:    r.serverErrors,
		Ingested:        r.ingested,
		IngestedByType:  make(map[string]uint64, len(r.byType)),
		Rejected:        r.rejected,
		Polls:           r.polls,
		PolledEvents:    r.polledEvents,
		PollGaps:        r.pollGaps,
		DisplaySent:     r.displaySent,
		DisplayFailed:   r.displayFailed,
	}
	for k, v := range r.byRoute {
		out.RequestsByRoute[k] = v
	}
	for k, v := range r.byType {
		out.IngestedByType[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
