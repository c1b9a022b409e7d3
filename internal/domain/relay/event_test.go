package relay

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDataUnmarshal_HeterogeneousValues(t *testing.T) {
	var d Data
	body := `{"transcript":"hello","confidence":0.92,"is_final":true,"extra":{"lang":"en"},"none":null}`
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got, ok := d.String("transcript"); !ok || got != "hello" {
		t.Fatalf("transcript mismatch: got=%q ok=%v", got, ok)
	}
	if got, ok := d.Number("confidence"); !ok || got != 0.92 {
		t.Fatalf("confidence mismatch: got=%v ok=%v", got, ok)
	}
	if got, ok := d.Bool("is_final"); !ok || !got {
		t.Fatalf("is_final mismatch: got=%v ok=%v", got, ok)
	}
	if got := d["extra"].Kind(); got != KindRaw {
		t.Fatalf("extra kind mismatch: got=%s", got)
	}
	if got := d["none"].Kind(); got != KindNull {
		t.Fatalf("none kind mismatch: got=%s", got)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if extra, ok := back["extra"].(map[string]any); !ok || extra["lang"] != "en" {
		t.Fatalf("raw field not preserved: %s", out)
	}
}

func TestDataString_WrongKind(t *testing.T) {
	d := Data{"transcript": NumberValue(3)}
	if _, ok := d.String("transcript"); ok {
		t.Fatalf("number must not read as string")
	}
}

func TestEventCheckPayload(t *testing.T) {
	cases := []struct {
		name    string
		evt     Event
		wantErr bool
	}{
		{"voice ok", Event{Type: EventVoiceInput, Data: Data{FieldTranscript: StringValue("hi")}}, false},
		{"voice missing", Event{Type: EventVoiceInput, Data: Data{}}, true},
		{"gesture ok", Event{Type: EventGesture, Data: Data{FieldGestureType: StringValue("swipe_left")}}, false},
		{"gesture unknown", Event{Type: EventGesture, Data: Data{FieldGestureType: StringValue("pinch")}}, true},
		{"connection ok", Event{Type: EventConnectionStatus, Data: Data{FieldConnected: BoolValue(false)}}, false},
		{"connection string", Event{Type: EventConnectionStatus, Data: Data{FieldConnected: StringValue("true")}}, true},
		{"activated empty", Event{Type: EventAppActivated}, false},
		{"unknown type", Event{Type: "battery"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.evt.CheckPayload()
			if (err != nil) != tc.wantErr {
				t.Fatalf("CheckPayload err=%v wantErr=%v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestDataClone_Independent(t *testing.T) {
	d := Data{"a": StringValue("x")}
	c := d.Clone()
	c["a"] = StringValue("y")
	if got, _ := d.String("a"); got != "x" {
		t.Fatalf("clone aliased original map")
	}
}
