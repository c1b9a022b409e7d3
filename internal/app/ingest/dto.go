package ingest

import "glassrelay/internal/domain/relay"

type Request struct {
	Type      string
	Data      relay.Data
	DeviceID  string
	// Timestamp is the producer's value as sent; see relay.ParseTimestamp.
	Timestamp relay.Value
}

type Response struct {
	EventID uint64      `json:"event_id"`
	Event   relay.Event `json:"-"`
}
