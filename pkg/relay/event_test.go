package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventRoundTrip(t *testing.T) {
	ev := &Event{
		ElementID: "greet-btn",
		EventType: "click",
		Data:      json.RawMessage(`{"name-input":"Ada"}`),
		RequestID: RequestIDRef(7),
	}
	b, err := ev.Encode()
	require.NoError(t, err)

	got, err := ParseEvent(b)
	require.NoError(t, err)
	require.Equal(t, ev.ElementID, got.ElementID)
	require.Equal(t, ev.EventType, got.EventType)
	require.JSONEq(t, string(ev.Data), string(got.Data))
	require.Equal(t, uint32(7), *got.RequestID)
}

func TestResponseRoundTrip(t *testing.T) {
	resp := &Response{
		Success:   true,
		Message:   "ok",
		Data:      json.RawMessage(`{"count":3}`),
		RequestID: RequestIDRef(12),
	}
	b, err := resp.Encode()
	require.NoError(t, err)

	got, err := ParseResponse(b)
	require.NoError(t, err)
	require.True(t, got.Success)
	require.Equal(t, "ok", got.Message)
	require.JSONEq(t, `{"count":3}`, string(got.Data))
	require.Equal(t, uint32(12), *got.RequestID)
}

func TestParseEventRejectsMalformedFrames(t *testing.T) {
	_, err := ParseEvent([]byte("not json"))
	require.Error(t, err)

	_, err = ParseEvent([]byte(`{"event_type":"click"}`))
	require.ErrorContains(t, err, "missing element_id")
}

func TestEventOptionalFieldsOmitted(t *testing.T) {
	b, err := (&Event{ElementID: "a", EventType: "click"}).Encode()
	require.NoError(t, err)
	require.NotContains(t, string(b), "request_id")
	require.NotContains(t, string(b), "data")
}

func TestDataMap(t *testing.T) {
	ev := &Event{ElementID: "a", EventType: "change"}
	m, err := ev.DataMap()
	require.NoError(t, err)
	require.Empty(t, m)

	ev.Data = json.RawMessage(`{"value":"hi"}`)
	m, err = ev.DataMap()
	require.NoError(t, err)
	require.Equal(t, "hi", m["value"])
}
