package client

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

func TestPendingResolveInvokesCompletionOnce(t *testing.T) {
	pt := NewPendingTable()
	var calls atomic.Int32
	var got atomic.Pointer[relay.Response]
	pt.Register(1, time.Minute, func(resp *relay.Response) {
		calls.Add(1)
		got.Store(resp)
	})
	require.Equal(t, 1, pt.Len())

	resp := &relay.Response{Success: true, RequestID: relay.RequestIDRef(1)}
	require.True(t, pt.Resolve(1, resp))
	require.Equal(t, 0, pt.Len())
	require.Equal(t, int32(1), calls.Load())
	require.True(t, got.Load().Success)

	// Duplicate response is a no-op.
	require.False(t, pt.Resolve(1, resp))
	require.Equal(t, int32(1), calls.Load())
}

func TestPendingUnknownIDIsNoOp(t *testing.T) {
	pt := NewPendingTable()
	require.False(t, pt.Resolve(99, &relay.Response{Success: true}))
}

func TestPendingDeadlineFiresTimeoutFailureExactlyOnce(t *testing.T) {
	pt := NewPendingTable()
	var calls atomic.Int32
	var got atomic.Pointer[relay.Response]
	pt.Register(7, 20*time.Millisecond, func(resp *relay.Response) {
		calls.Add(1)
		got.Store(resp)
	})

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	resp := got.Load()
	require.False(t, resp.Success)
	require.Contains(t, resp.Message, "timed out")
	require.Equal(t, uint32(7), *resp.RequestID)

	// A response arriving after the deadline is silently dropped.
	require.False(t, pt.Resolve(7, &relay.Response{Success: true, RequestID: relay.RequestIDRef(7)}))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestPendingResolveBeforeDeadlineCancelsWatcher(t *testing.T) {
	pt := NewPendingTable()
	var calls atomic.Int32
	pt.Register(3, 30*time.Millisecond, func(*relay.Response) { calls.Add(1) })
	require.True(t, pt.Resolve(3, &relay.Response{Success: true, RequestID: relay.RequestIDRef(3)}))

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}
