package status

import "time"

type HealthResponse struct {
	Status         string `json:"status"`
	EventsCount    int    `json:"events_count"`
	ActiveSessions int    `json:"active_sessions"`
}

type StatsResponse struct {
	ActiveSessions  int               `json:"active_sessions"`
	TotalRequests   uint64            `json:"total_requests"`
	TotalEvents     int               `json:"total_events"`
	EventsIngested  uint64            `json:"events_ingested"`
	EventTypes      map[string]int    `json:"event_types"`
	QueueCapacity   int               `json:"queue_capacity"`
	HighWater       uint64            `json:"high_water"`
	OldestIndex     uint64            `json:"oldest_index"`
	RequestsByRoute map[string]uint64 `json:"requests_by_route"`
	Display         DisplayStats      `json:"display"`
	Rejected        uint64            `json:"rejected"`
	UptimeSeconds   int64             `json:"uptime_seconds"`
	Timestamp       time.Time         `json:"timestamp"`
}

type DisplayStats struct {
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

type InfoResponse struct {
	Service        string    `json:"service"`
	Status         string    `json:"status"`
	EventsQueued   int       `json:"events_queued"`
	ActiveSessions int       `json:"active_sessions"`
	Timestamp      time.Time `json:"timestamp"`
}
