package relay

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Zone-less layouts are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// unix times at or above this are taken as milliseconds.
const millisThreshold = 1e12

// ParseTimestamp reads a producer-supplied timestamp. It accepts RFC3339,
// ISO-8601 without a zone and unix seconds or milliseconds. ok is false
// when the value is absent.
func ParseTimestamp(v Value) (t time.Time, ok bool, err error) {
	switch v.Kind() {
	case KindNull:
		return time.Time{}, false, nil
	case KindString:
		s, _ := v.AsString()
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC(), true, nil
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("%w: unrecognised format %q", ErrInvalidTimestamp, s)
	case KindNumber:
		n, _ := v.AsNumber()
		if n <= 0 || math.IsInf(n, 0) || math.IsNaN(n) {
			return time.Time{}, false, fmt.Errorf("%w: %v is not a positive unix time", ErrInvalidTimestamp, n)
		}
		if n >= millisThreshold {
			return time.UnixMilli(int64(n)).UTC(), true, nil
		}
		sec, frac := math.Modf(n)
		return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(), true, nil
	default:
		return time.Time{}, false, fmt.Errorf("%w: %s is not a time", ErrInvalidTimestamp, v.Kind())
	}
}
