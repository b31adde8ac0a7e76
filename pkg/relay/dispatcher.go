package relay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Dispatcher looks up the handler for an event and produces exactly one
// Response per event. Handler failures of any kind, including panics, are
// contained at the dispatch boundary and converted into failure Responses;
// a dispatch never aborts the serving loop or other in-flight dispatches.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch matches the event against the registry and invokes its handler.
// The returned response always carries the event's request id so callers can
// correlate it regardless of what the handler produced.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) *Response {
	if ev == nil {
		return &Response{Success: false, Message: "nil event"}
	}
	key := ev.Key()
	logger := log.With().Str("component", "relay").Str("key", key).Logger()

	if d == nil || d.registry == nil {
		logger.Error().Msg("dispatcher has no registry")
		return &Response{Success: false, Message: "no handler registered for " + key, RequestID: ev.RequestID}
	}
	if err := ctx.Err(); err != nil {
		return &Response{Success: false, Message: err.Error(), RequestID: ev.RequestID}
	}

	h, ok := d.registry.Lookup(ev.ElementID, ev.EventType)
	if !ok {
		logger.Debug().Msg("no handler registered")
		return &Response{Success: false, Message: "no handler registered for " + key, RequestID: ev.RequestID}
	}

	resp, err := invoke(h, ev)
	if err != nil {
		logger.Warn().Err(err).Msg("handler failed")
		return &Response{Success: false, Message: err.Error(), RequestID: ev.RequestID}
	}
	if resp == nil {
		resp = &Response{Success: true}
	}
	// Correlation is owned here, not by handlers.
	resp.RequestID = ev.RequestID
	return resp
}

// invoke runs the handler with panic containment.
func invoke(h Handler, ev *Event) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ev)
}
