package relay

import "encoding/json"

// Hello is the first frame the backend writes on a fresh streaming
// connection. The session id identifies the connection in logs; receipt on
// the client side confirms the channel is live end to end.
type Hello struct {
	Hello      bool   `json:"hello"`
	SessionID  string `json:"session_id"`
	ServerTime int64  `json:"server_time"`
}

// ParseHello reports whether the frame is a hello frame and decodes it.
func ParseHello(data []byte) (*Hello, bool) {
	var h Hello
	if err := json.Unmarshal(data, &h); err != nil || !h.Hello {
		return nil, false
	}
	return &h, true
}

// Encode serializes the hello frame.
func (h *Hello) Encode() ([]byte, error) {
	return json.Marshal(h)
}
