package relay

import "time"

type DisplayAction string

const (
	DisplayShow  DisplayAction = "display"
	DisplayClear DisplayAction = "clear"
)

const DefaultDisplayDuration = 5 * time.Second

// DisplayCommand is transient: it is handed to the device transport and
// never recorded in the event log. An empty DeviceID targets every device.
type DisplayCommand struct {
	ID       string        `json:"id"`
	Action   DisplayAction `json:"action"`
	Text     string        `json:"text,omitempty"`
	DeviceID string        `json:"device_id,omitempty"`
	Duration time.Duration `json:"-"`
	IssuedAt time.Time     `json:"issued_at"`
}

func (c DisplayCommand) Broadcast() bool {
	return c.DeviceID == ""
}
