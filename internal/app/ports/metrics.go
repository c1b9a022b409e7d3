package ports

import "glassrelay/internal/domain/relay"

type RelayMetrics interface {
	RecordRequest(route string, status int)
	RecordIngest(eventType relay.EventType)
	RecordRejected()
	RecordPoll(returned int, gap bool)
	RecordDisplay(action relay.DisplayAction, delivered bool)
}

type MetricsSnapshot struct {
	TotalRequests   uint64            `json:"total_requests"`
	RequestsByRoute map[string]uint64 `json:"requests_by_route"`
	ServerErrors    uint64            `json:"server_errors"`
	Ingested        uint64            `json:"ingested"`
	IngestedByType  map[string]uint64 `json:"ingested_by_type"`
	Rejected        uint64            `json:"rejected"`
	Polls           uint64            `json:"polls"`
	PolledEvents    uint64            `json:"polled_events"`
	PollGaps        uint64            `json:"poll_gaps"`
	DisplaySent     uint64            `json:"display_sent"`
	DisplayFailed   uint64            `json:"display_failed"`
}

type MetricsReader interface {
	Snapshot() MetricsSnapshot
}
