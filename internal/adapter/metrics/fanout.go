package metrics

import (
	"glassrelay/internal/app/ports"
	"glassrelay/internal/domain/relay"
)

// Fanout forwards every observation to each recorder in order.
type Fanout []ports.RelayMetrics

func (f Fanout) RecordRequest(route string, status int) {
	for _, m := range f {
		m.RecordRequest(route, status)
	}
}

func (f Fanout) RecordIngest(eventType relay.EventType) {
	for _, m := range f {
		m.RecordIngest(eventType)
	}
}

func (f Fanout) RecordRejected() {
	for _, m := range f {
		m.RecordRejected()
	}
}

func (f Fanout) RecordPoll(returned int, gap bool) {
	for _, m := range f {
		m.RecordPoll(returned, gap)
	}
}

func (f Fanout) RecordDisplay(action relay.DisplayAction, delivered bool) {
	for _, m := range f {
		m.RecordDisplay(action, delivered)
	}
}
