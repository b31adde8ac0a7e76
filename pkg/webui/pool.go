package webui

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// defaultWriteTimeout bounds a single frame write; a peer that stops
// reading trips it once its kernel buffers fill and gets dropped.
const defaultWriteTimeout = 10 * time.Second

// connEntry carries one session's write lock. gorilla allows a single
// concurrent writer per connection; locking per entry means a stalled
// session serializes only on itself, never on its neighbors.
type connEntry struct {
	mu        sync.Mutex
	sessionID string
}

// connectionPool tracks live websocket sessions. The pool-level mutex only
// guards the map; frame writes happen under the entry's own lock.
type connectionPool struct {
	mu           sync.Mutex
	conns        map[*websocket.Conn]*connEntry
	writeTimeout time.Duration
}

func newConnectionPool() *connectionPool {
	return &connectionPool{
		conns:        map[*websocket.Conn]*connEntry{},
		writeTimeout: defaultWriteTimeout,
	}
}

func (cp *connectionPool) add(conn *websocket.Conn, sessionID string) {
	if cp == nil || conn == nil {
		return
	}
	cp.mu.Lock()
	cp.conns[conn] = &connEntry{sessionID: sessionID}
	cp.mu.Unlock()
}

func (cp *connectionPool) remove(conn *websocket.Conn) {
	if cp == nil || conn == nil {
		_ = closeConn(conn)
		return
	}
	cp.mu.Lock()
	delete(cp.conns, conn)
	cp.mu.Unlock()
	_ = closeConn(conn)
}

// sendTo writes one text frame to a single connection. A write failure or
// deadline expiry drops the connection from the pool; the read loop notices
// the close and exits.
func (cp *connectionPool) sendTo(conn *websocket.Conn, data []byte) {
	if cp == nil || conn == nil || len(data) == 0 {
		return
	}
	cp.mu.Lock()
	entry, ok := cp.conns[conn]
	cp.mu.Unlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if cp.writeTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(cp.writeTimeout))
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Warn().Err(err).Str("component", "webui").Str("session_id", entry.sessionID).Msg("ws send failed, dropping connection")
		cp.mu.Lock()
		delete(cp.conns, conn)
		cp.mu.Unlock()
		_ = closeConn(conn)
	}
}

func (cp *connectionPool) count() int {
	if cp == nil {
		return 0
	}
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return len(cp.conns)
}

func (cp *connectionPool) closeAll() {
	if cp == nil {
		return
	}
	cp.mu.Lock()
	for conn := range cp.conns {
		_ = closeConn(conn)
		delete(cp.conns, conn)
	}
	cp.mu.Unlock()
}

func closeConn(conn *websocket.Conn) error {
	if conn == nil {
		return nil
	}
	return conn.Close()
}
