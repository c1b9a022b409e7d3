package relay

import "time"

type SessionState string

const (
	SessionUnknown  SessionState = "unknown"
	SessionActive   SessionState = "active"
	SessionInactive SessionState = "inactive"
)

const (
	DefaultSessionTimeout = 60 * time.Second
	DefaultSessionGrace   = 10 * time.Minute
)

type Session struct {
	DeviceID      string    `json:"device_id"`
	Active        bool      `json:"active"`
	LastSeenAt    time.Time `json:"last_seen_at"`
	ActivatedAt   time.Time `json:"activated_at"`
	LastEventType EventType `json:"last_event_type"`
	EventCount    int       `json:"event_count"`
}

// Activation reports whether the event moves a device into Active,
// and whether it is a lifecycle event at all.
func Activation(e Event) (active bool, lifecycle bool) {
	switch e.Type {
	case EventAppActivated:
		return true, true
	case EventAppDeactivated:
		return false, true
	case EventConnectionStatus:
		status, err := e.ConnectionStatus()
		if err != nil {
			return false, false
		}
		return status.Connected, true
	default:
		return false, false
	}
}

// StartSession returns the session created by e for a device without one.
// ok is false when e must not create a session.
func StartSession(e Event) (Session, bool) {
	active, lifecycle := Activation(e)
	if !lifecycle || !active {
		return Session{}, false
	}
	return Session{
		DeviceID:      e.DeviceID,
		Active:        true,
		LastSeenAt:    e.ReceivedAt,
		ActivatedAt:   e.ReceivedAt,
		LastEventType: e.Type,
		EventCount:    1,
	}, true
}

// Apply advances the session with an event from the same device. timeout is
// used to decide whether an active session had already lapsed.
func (s Session) Apply(e Event, timeout time.Duration) Session {
	wasActive := s.ActiveAt(e.ReceivedAt, timeout)
	active, lifecycle := Activation(e)
	switch {
	case lifecycle && active:
		if !wasActive {
			s.ActivatedAt = e.ReceivedAt
		}
		s.Active = true
	case lifecycle:
		s.Active = false
	case !wasActive:
		s.Active = false
	}
	s.LastSeenAt = e.ReceivedAt
	s.LastEventType = e.Type
	s.EventCount++
	return s
}

// ActiveAt evaluates the inactivity timeout lazily. A non-positive timeout
// disables expiry.
func (s Session) ActiveAt(now time.Time, timeout time.Duration) bool {
	if !s.Active {
		return false
	}
	if timeout <= 0 {
		return true
	}
	return now.Sub(s.LastSeenAt) < timeout
}

func (s Session) StateAt(now time.Time, timeout time.Duration) SessionState {
	if s.ActiveAt(now, timeout) {
		return SessionActive
	}
	return SessionInactive
}

// Evictable reports whether an inactive entry has outlived the grace period.
func (s Session) Evictable(now time.Time, timeout, grace time.Duration) bool {
	if s.ActiveAt(now, timeout) {
		return false
	}
	if grace <= 0 {
		return false
	}
	return now.Sub(s.LastSeenAt) >= grace
}
