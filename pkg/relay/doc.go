// Package relay contains the core event relay: wire types exchanged with the
// browser, the handler registry that binds (element, event type) pairs to
// backend handlers, and the dispatcher that turns inbound events into
// responses. Transports live in pkg/webui (server side) and pkg/client
// (session side); both feed events through this package.
package relay
