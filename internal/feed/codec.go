package feed

import (
	"encoding/json"
	"fmt"
)

// Encode returns the wire form of ev.
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

// Decode parses a wire payload. Unknown kinds and missing ids are rejected.
func Decode(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if ev.Kind != Insert && ev.Kind != Delete {
		return Event{}, fmt.Errorf("%w: kind %q", ErrBadPayload, ev.Kind)
	}
	if ev.Record.ID == "" {
		return Event{}, fmt.Errorf("%w: missing record id", ErrBadPayload)
	}
	return ev, nil
}
