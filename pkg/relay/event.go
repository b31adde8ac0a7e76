package relay

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Event is a UI event raised in the browser and delivered to the backend.
// Data is an open map whose shape depends on the originating element
// (form fields, coordinates, key name, collected sibling-input values).
type Event struct {
	ElementID string          `json:"element_id"`
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID *uint32         `json:"request_id,omitempty"`
}

// Response is the result of dispatching an Event, sent back on the same
// transport. RequestID, when present, echoes the originating event's id.
type Response struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID *uint32         `json:"request_id,omitempty"`
}

// Key returns the registry binding key for the event.
func (e *Event) Key() string {
	return BindingKey(e.ElementID, e.EventType)
}

// BindingKey builds the "<element_id>:<event_type>" key used by the registry.
func BindingKey(elementID, eventType string) string {
	return elementID + ":" + eventType
}

// ParseEvent decodes a wire frame into an Event. A frame that is not valid
// JSON or lacks the binding fields is a parse error; callers log and discard
// it without tearing down the transport.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errors.Wrap(err, "parse event")
	}
	if ev.ElementID == "" || ev.EventType == "" {
		return nil, errors.New("parse event: missing element_id or event_type")
	}
	return &ev, nil
}

// ParseResponse decodes a wire frame into a Response.
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Wrap(err, "parse response")
	}
	return &resp, nil
}

// Encode serializes the event for the wire.
func (e *Event) Encode() ([]byte, error) {
	b, err := json.Marshal(e)
	return b, errors.Wrap(err, "encode event")
}

// Encode serializes the response for the wire.
func (r *Response) Encode() ([]byte, error) {
	b, err := json.Marshal(r)
	return b, errors.Wrap(err, "encode response")
}

// DataMap decodes the event payload into a generic map. An absent payload
// yields an empty map so handlers can index it without nil checks.
func (e *Event) DataMap() (map[string]any, error) {
	if len(e.Data) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(e.Data, &m); err != nil {
		return nil, errors.Wrap(err, "decode event data")
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// MarshalData encodes an arbitrary value as a response payload.
func MarshalData(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	return b, errors.Wrap(err, "encode payload")
}

// RequestIDRef is a convenience for building optional request ids in tests
// and demo code.
func RequestIDRef(id uint32) *uint32 { return &id }
