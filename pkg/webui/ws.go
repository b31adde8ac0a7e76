package webui

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

// handleStream upgrades the request to a websocket session and starts its
// read loop.
func (r *Router) handleStream(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	sessionID := uuid.NewString()
	r.pool.add(conn, sessionID)

	wsLog := log.With().
		Str("component", "webui").
		Str("session_id", sessionID).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	wsLog.Info().Msg("ws session attached")

	hello := &relay.Hello{Hello: true, SessionID: sessionID, ServerTime: time.Now().UnixMilli()}
	if b, err := hello.Encode(); err == nil {
		r.pool.sendTo(conn, b)
	}

	// The request context dies when this handler returns; the session
	// lives on, so dispatch runs under the router's base context.
	go r.readLoop(r.baseCtx, conn, wsLog)
}

// readLoop consumes frames until the connection errors or closes. Each valid
// event is dispatched on its own goroutine; malformed frames are logged and
// discarded without closing the connection.
func (r *Router) readLoop(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger) {
	defer r.pool.remove(conn)
	defer wsLog.Info().Msg("ws session detached")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			wsLog.Debug().Err(err).Msg("ws read loop end")
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		ev, err := relay.ParseEvent(data)
		if err != nil {
			wsLog.Warn().Err(err).Msg("discarding malformed frame")
			continue
		}
		go func() {
			resp := r.dispatcher.Dispatch(ctx, ev)
			b, err := resp.Encode()
			if err != nil {
				wsLog.Error().Err(err).Str("key", ev.Key()).Msg("encode response failed")
				return
			}
			r.pool.sendTo(conn, b)
		}()
	}
}
