// Package webui is the backend half of the relay: it serves the streaming
// websocket endpoint (/ws), the stateless HTTP fallback endpoint (/api/event)
// and the static UI assets, and drives dispatch through pkg/relay.
//
// Ownership model:
//   - The registry is populated before Run and frozen when serving begins.
//   - Each websocket connection gets its own read loop; every inbound event
//     is dispatched on its own goroutine so a blocking handler never stalls
//     other connections or other messages on the same connection.
package webui
