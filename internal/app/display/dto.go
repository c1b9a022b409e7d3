package display

import "time"

type Request struct {
	Text     string
	DeviceID string
	// Duration is how long the text should stay up; zero means the default.
	Duration time.Duration
}

type Ack struct {
	Status    string    `json:"status"`
	CommandID string    `json:"command_id"`
	Action    string    `json:"action"`
	DeviceID  string    `json:"device_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}
