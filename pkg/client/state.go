package client

// ConnState is the streaming connection's lifecycle state.
//
// Transitions:
//
//	Connecting -> Open          handshake succeeded
//	Connecting -> Closed        handshake failed or timed out
//	Open       -> Closed        connection closed or errored
//	Closed     -> Reconnecting  retry scheduled after the current backoff delay
//	Reconnecting -> Connecting  retry timer fired
type ConnState int32

const (
	StateConnecting ConnState = iota
	StateOpen
	StateClosed
	StateReconnecting
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}
