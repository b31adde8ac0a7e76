// Package client is the session half of the relay: it owns the streaming
// connection lifecycle (connect, reconnect with backoff), correlates
// outgoing events with their responses, buffers events raised while the
// stream is down, and falls back to the one-shot HTTP transport when the
// stream cannot be opened in time.
//
// A page session constructs exactly one Client at load and keeps it for the
// session's lifetime; its pending table and queue hold no backend state and
// are discarded with it. Constructing a second Client for the same backend
// is not an error but defeats response correlation bookkeeping, so don't.
package client
