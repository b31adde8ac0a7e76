package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

func TestEventQueueDrainsInInsertionOrder(t *testing.T) {
	var q eventQueue
	for _, id := range []string{"a", "b", "c"} {
		q.push(&relay.Event{ElementID: id, EventType: "click"}, nil)
	}
	require.Equal(t, 3, q.len())

	drained := q.drain()
	require.Len(t, drained, 3)
	require.Equal(t, "a", drained[0].ev.ElementID)
	require.Equal(t, "b", drained[1].ev.ElementID)
	require.Equal(t, "c", drained[2].ev.ElementID)

	// A second drain yields nothing; entries flush exactly once.
	require.Equal(t, 0, q.len())
	require.Empty(t, q.drain())
}
