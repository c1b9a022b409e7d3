package history

import "glassrelay/internal/domain/relay"

type Request struct {
	DeviceID     string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
	Type         string
}

type Response struct {
	DeviceID string        `json:"device_id"`
	Events   []relay.Event `json:"events"`
	Count    int           `json:"count"`
	Source   string        `json:"source"`
}
