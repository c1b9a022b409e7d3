package poll

import (
	"time"

	"glassrelay/internal/domain/relay"
)

type Request struct {
	Since uint64
	Limit int
}

type Response struct {
	Events      []relay.Event `json:"events"`
	Count       int           `json:"count"`
	LastIndex   uint64        `json:"last_index"`
	Gap         bool          `json:"gap"`
	OldestIndex uint64        `json:"oldest_index"`
	HighWater   uint64        `json:"high_water"`
}

type AwaitRequest struct {
	DeviceID string
	Type     string
	Timeout  time.Duration
}

type AwaitResponse struct {
	Event relay.Event `json:"event"`
}

type ClearResponse struct {
	Status    string `json:"status"`
	Cleared   int    `json:"cleared"`
	HighWater uint64 `json:"high_water"`
}
