package relay

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimestamp_Formats(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2024-05-01T12:00:00Z"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"rfc3339 offset", `"2024-05-01T14:00:00+02:00"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"naive iso micros", `"2024-05-01T12:00:00.123456"`, time.Date(2024, 5, 1, 12, 0, 0, 123456000, time.UTC)},
		{"naive iso", `"2024-05-01T12:00:00"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"naive space", `"2024-05-01 12:00:00"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"unix seconds", `1714564800`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"unix fractional", `1714564800.5`, time.Date(2024, 5, 1, 12, 0, 0, 500000000, time.UTC)},
		{"unix millis", `1714564800250`, time.Date(2024, 5, 1, 12, 0, 0, 250000000, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, ok, err := ParseTimestamp(v)
			if err != nil || !ok {
				t.Fatalf("ParseTimestamp(%s) ok=%v err=%v", tc.raw, ok, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseTimestamp(%s) got=%v want=%v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseTimestamp_Absent(t *testing.T) {
	for _, v := range []Value{{}, StringValue(""), StringValue("  ")} {
		if _, ok, err := ParseTimestamp(v); ok || err != nil {
			t.Fatalf("expected absent for %+v, got ok=%v err=%v", v, ok, err)
		}
	}
}

func TestParseTimestamp_Rejects(t *testing.T) {
	for _, v := range []Value{StringValue("yesterday"), NumberValue(-5), BoolValue(true), RawValue(json.RawMessage(`{"s":1}`))} {
		if _, _, err := ParseTimestamp(v); !errors.Is(err, ErrInvalidTimestamp) {
			t.Fatalf("expected ErrInvalidTimestamp for %+v, got %v", v, err)
		}
	}
}
