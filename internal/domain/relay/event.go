package relay

import (
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	EventVoiceInput       EventType = "voice_input"
	EventGesture          EventType = "gesture"
	EventAppActivated     EventType = "app_activated"
	EventAppDeactivated   EventType = "app_deactivated"
	EventConnectionStatus EventType = "connection_status"
)

var KnownEventTypes = []EventType{
	EventVoiceInput,
	EventGesture,
	EventAppActivated,
	EventAppDeactivated,
	EventConnectionStatus,
}

func (t EventType) Valid() bool {
	for _, known := range KnownEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Lifecycle reports whether the event type drives the session state machine.
func (t EventType) Lifecycle() bool {
	switch t {
	case EventAppActivated, EventAppDeactivated, EventConnectionStatus:
		return true
	default:
		return false
	}
}

type GestureType string

const (
	GestureTapOnce    GestureType = "tap_once"
	GestureTapTwice   GestureType = "tap_twice"
	GestureSwipeUp    GestureType = "swipe_up"
	GestureSwipeDown  GestureType = "swipe_down"
	GestureSwipeLeft  GestureType = "swipe_left"
	GestureSwipeRight GestureType = "swipe_right"
)

var KnownGestures = []GestureType{
	GestureTapOnce,
	GestureTapTwice,
	GestureSwipeUp,
	GestureSwipeDown,
	GestureSwipeLeft,
	GestureSwipeRight,
}

func (g GestureType) Valid() bool {
	for _, known := range KnownGestures {
		if g == known {
			return true
		}
	}
	return false
}

const (
	FieldTranscript  = "transcript"
	FieldGestureType = "gesture_type"
	FieldConnected   = "connected"
)

var ErrInvalidPayload = errors.New("invalid event payload")

// Event is immutable once appended; Sequence is assigned by the event log.
type Event struct {
	Sequence   uint64    `json:"sequence"`
	Type       EventType `json:"type"`
	Data       Data      `json:"data"`
	DeviceID   string    `json:"device_id"`
	Timestamp  time.Time `json:"timestamp"`
	ReceivedAt time.Time `json:"received_at"`
}

type VoiceInput struct {
	Transcript string
}

type Gesture struct {
	Kind GestureType
}

type ConnectionStatus struct {
	Connected bool
}

func (e Event) VoiceInput() (VoiceInput, error) {
	if e.Type != EventVoiceInput {
		return VoiceInput{}, fmt.Errorf("%w: %s is not %s", ErrInvalidPayload, e.Type, EventVoiceInput)
	}
	s, ok := e.Data.String(FieldTranscript)
	if !ok {
		return VoiceInput{}, fmt.Errorf("%w: %s must be a string", ErrInvalidPayload, FieldTranscript)
	}
	return VoiceInput{Transcript: s}, nil
}

func (e Event) Gesture() (Gesture, error) {
	if e.Type != EventGesture {
		return Gesture{}, fmt.Errorf("%w: %s is not %s", ErrInvalidPayload, e.Type, EventGesture)
	}
	s, ok := e.Data.String(FieldGestureType)
	if !ok || !GestureType(s).Valid() {
		return Gesture{}, fmt.Errorf("%w: unknown %s %q", ErrInvalidPayload, FieldGestureType, s)
	}
	return Gesture{Kind: GestureType(s)}, nil
}

func (e Event) ConnectionStatus() (ConnectionStatus, error) {
	if e.Type != EventConnectionStatus {
		return ConnectionStatus{}, fmt.Errorf("%w: %s is not %s", ErrInvalidPayload, e.Type, EventConnectionStatus)
	}
	b, ok := e.Data.Bool(FieldConnected)
	if !ok {
		return ConnectionStatus{}, fmt.Errorf("%w: %s must be a boolean", ErrInvalidPayload, FieldConnected)
	}
	return ConnectionStatus{Connected: b}, nil
}

// CheckPayload verifies the typed fields each event type requires.
func (e Event) CheckPayload() error {
	var err error
	switch e.Type {
	case EventVoiceInput:
		_, err = e.VoiceInput()
	case EventGesture:
		_, err = e.Gesture()
	case EventConnectionStatus:
		_, err = e.ConnectionStatus()
	case EventAppActivated, EventAppDeactivated:
	default:
		err = fmt.Errorf("%w: unknown event type %q", ErrInvalidPayload, e.Type)
	}
	return err
}
