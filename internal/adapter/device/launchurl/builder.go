package launchurl

import (
	"net/url"
	"strconv"

	"glassrelay/internal/domain/relay"
)

const DefaultScheme = "mentra"

// Build renders a command as the URL-like string the glasses app launches,
// e.g. mentra://display?text=hi&duration_ms=5000.
func Build(scheme string, cmd relay.DisplayCommand) string {
	if scheme == "" {
		scheme = DefaultScheme
	}
	q := url.Values{}
	if cmd.Action == relay.DisplayShow {
		q.Set("text", cmd.Text)
		if cmd.Duration > 0 {
			q.Set("duration_ms", strconv.FormatInt(cmd.Duration.Milliseconds(), 10))
		}
	}
	if cmd.DeviceID != "" {
		q.Set("device_id", cmd.DeviceID)
	}
	u := url.URL{Scheme: scheme, Host: string(cmd.Action), RawQuery: q.Encode()}
	return u.String()
}
