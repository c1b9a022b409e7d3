package prom

import (
	"strconv"

	"glassrelay/internal/domain/relay"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "glassrelay"

type Recorder struct {
	requests     *prometheus.CounterVec
	ingested     *prometheus.CounterVec
	rejected     prometheus.Counter
	polls        prometheus.Counter
	polledEvents prometheus.Counter
	pollGaps     prometheus.Counter
	display      *prometheus.CounterVec
}

// NewRecorder registers the relay counters on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_total",
			Help:      "Events appended to the log by type.",
		}, []string{"type"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_rejected_total",
			Help:      "Webhook payloads rejected by validation.",
		}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Poll requests served.",
		}),
		polledEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polled_events_total",
			Help:      "Events returned to pollers.",
		}),
		pollGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_gaps_total",
			Help:      "Polls whose cursor pointed at evicted events.",
		}),
		display: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "display_commands_total",
			Help:      "Display commands by action and outcome.",
		}, []string{"action", "outcome"}),
	}
	for _, c := range []prometheus.Collector{r.requests, r.ingested, r.rejected, r.polls, r.polledEvents, r.pollGaps, r.display} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) RecordRequest(route string, status int) {
	r.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (r *Recorder) RecordIngest(eventType relay.EventType) {
	r.ingested.WithLabelValues(string(eventType)).Inc()
}

func (r *Recorder) RecordRejected() {
	r.rejected.Inc()
}

func (r *Recorder) RecordPoll(returned int, gap bool) {
	r.polls.Inc()
	r.polledEvents.Add(float64(returned))
	if gap {
		r.pollGaps.Inc()
	}
}

func (r *Recorder) RecordDisplay(action relay.DisplayAction, delivered bool) {
	outcome := "delivered"
	if !delivered {
		outcome = "failed"
	}
	r.display.WithLabelValues(string(action), outcome).Inc()
}
