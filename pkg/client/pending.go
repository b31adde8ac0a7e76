package client

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

// PendingTable correlates in-flight streaming requests with their eventual
// responses. Exactly one of {resolve, timeout} fires per registered id: a
// response arriving after the deadline, or a duplicate response, is a no-op.
type PendingTable struct {
	mu      sync.Mutex
	pending map[uint32]*pendingEntry
}

type pendingEntry struct {
	timer *time.Timer
	done  func(*relay.Response)
}

func NewPendingTable() *PendingTable {
	return &PendingTable{pending: map[uint32]*pendingEntry{}}
}

// Register adds an entry and arms its deadline watcher. If the deadline
// elapses while the entry is still present, the entry is removed and done is
// invoked with a timeout failure.
func (pt *PendingTable) Register(id uint32, timeout time.Duration, done func(*relay.Response)) {
	if pt == nil || done == nil {
		return
	}
	entry := &pendingEntry{done: done}
	pt.mu.Lock()
	pt.pending[id] = entry
	entry.timer = time.AfterFunc(timeout, func() { pt.expire(id) })
	pt.mu.Unlock()
}

// Resolve matches a response to its entry, removes it and invokes the
// completion. Unmatched ids (late, duplicate, or never registered) report
// false and have no effect.
func (pt *PendingTable) Resolve(id uint32, resp *relay.Response) bool {
	if pt == nil {
		return false
	}
	pt.mu.Lock()
	entry, ok := pt.pending[id]
	if ok {
		delete(pt.pending, id)
		entry.timer.Stop()
	}
	pt.mu.Unlock()
	if !ok {
		log.Debug().Str("component", "client").Uint32("request_id", id).Msg("dropping response with no pending request")
		return false
	}
	entry.done(resp)
	return true
}

func (pt *PendingTable) expire(id uint32) {
	pt.mu.Lock()
	entry, ok := pt.pending[id]
	if ok {
		delete(pt.pending, id)
	}
	pt.mu.Unlock()
	if !ok {
		return
	}
	log.Debug().Str("component", "client").Uint32("request_id", id).Msg("pending request timed out")
	entry.done(&relay.Response{
		Success:   false,
		Message:   "request timed out",
		RequestID: relay.RequestIDRef(id),
	})
}

// Len reports the number of outstanding requests.
func (pt *PendingTable) Len() int {
	if pt == nil {
		return 0
	}
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return len(pt.pending)
}
