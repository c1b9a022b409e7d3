package sessions

import "glassrelay/internal/domain/relay"

type View struct {
	relay.Session
	State relay.SessionState `json:"state"`
}

type ListResponse struct {
	Sessions []View `json:"sessions"`
	Count    int    `json:"count"`
	Active   int    `json:"active"`
}

type DetailResponse struct {
	Session      View          `json:"session"`
	RecentEvents []relay.Event `json:"recent_events"`
}
