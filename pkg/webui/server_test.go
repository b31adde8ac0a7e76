package webui

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServerRunShutsDownGracefully(t *testing.T) {
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := New(ctx, DefaultConfig().WithPort(port).WithStaticDir(""))
	require.NoError(t, err)
	require.NoError(t, s.BindClick("hello-btn", func() {}))

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx) }()

	// Wait for the listener to come up, keeping one live session attached.
	url := fmt.Sprintf("ws://127.0.0.1:%d%s", port, StreamPath)
	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, resp, dialErr := websocket.DefaultDialer.Dial(url, nil)
		if resp != nil {
			_ = resp.Body.Close()
		}
		if dialErr != nil {
			return false
		}
		conn = c
		return true
	}, 5*time.Second, 20*time.Millisecond)
	t.Cleanup(func() { _ = conn.Close() })
	readHello(t, conn)
	require.Equal(t, 1, s.Router().ConnectionCount())

	// Run froze the registry before serving.
	err = s.Bind("late-btn", "click", func(ev *relay.Event) (*relay.Response, error) {
		return &relay.Response{Success: true}, nil
	})
	require.ErrorIs(t, err, relay.ErrRegistryFrozen)

	cancel()
	select {
	case err := <-runErr:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	require.Equal(t, 0, s.Router().ConnectionCount())
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err, "session should be closed after shutdown")
}
