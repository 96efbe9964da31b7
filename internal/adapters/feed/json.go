package feed

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/possessions/internal/domain/model"
)

// DefaultMaxEvents bounds the events accepted in one request body. A full
// game with several overtimes stays well below it.
const DefaultMaxEvents = 5000

// DecodeEvents reads a JSON array of events in the model.Event shape.
// Unknown fields are rejected so that typos do not silently zero a column.
func DecodeEvents(r io.Reader, maxEvents int) ([]model.Event, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var events []model.Event
	if err := dec.Decode(&events); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBody, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after array", ErrBadBody)
	}
	if len(events) > maxEvents {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyEvents, len(events), maxEvents)
	}
	for i := range events {
		if events[i].Period < 1 {
			return nil, fmt.Errorf("%w: event %d: period %d", ErrBadBody, i, events[i].Period)
		}
		if events[i].MsgType == 0 {
			return nil, fmt.Errorf("%w: event %d: missing msg_type", ErrBadBody, i)
		}
	}
	return events, nil
}
