package client

import "github.com/williamwith4ms/web-ui/pkg/relay"

// queuedEvent is an event raised while the stream was down, held together
// with its completion callback until the next Open transition.
type queuedEvent struct {
	ev   *relay.Event
	done func(*relay.Response)
}

// eventQueue is a FIFO buffer of events raised while the connection is not
// open. It is owned by the client run loop and never accessed concurrently.
type eventQueue struct {
	entries []queuedEvent
}

func (q *eventQueue) push(ev *relay.Event, done func(*relay.Response)) {
	q.entries = append(q.entries, queuedEvent{ev: ev, done: done})
}

// drain returns the buffered entries in insertion order and empties the
// queue, so a flush sends each entry exactly once.
func (q *eventQueue) drain() []queuedEvent {
	entries := q.entries
	q.entries = nil
	return entries
}

func (q *eventQueue) len() int {
	return len(q.entries)
}
