package webui

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

// Router wires the relay endpoints plus static asset serving onto a mux.
// Bindings are registered through Bind/BindClick before serving begins;
// Freeze is called by the server when it starts accepting traffic.
type Router struct {
	baseCtx    context.Context
	cfg        Config
	mux        *http.ServeMux
	registry   *relay.Registry
	dispatcher *relay.Dispatcher
	pool       *connectionPool
	upgrader   websocket.Upgrader
}

func NewRouter(ctx context.Context, cfg Config) (*Router, error) {
	if ctx == nil {
		return nil, errors.New("ctx is nil")
	}
	registry := relay.NewRegistry()
	r := &Router{
		baseCtx:    ctx,
		cfg:        cfg,
		mux:        http.NewServeMux(),
		registry:   registry,
		dispatcher: relay.NewDispatcher(registry),
		pool:       newConnectionPool(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local bridge; the browser page is served by this same process.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	r.registerHTTPHandlers()
	return r, nil
}

// Bind registers a response-producing handler for an (element, event type)
// pair. Registering the same pair twice overwrites the earlier binding.
func (r *Router) Bind(elementID, eventType string, fn func(ev *relay.Event) (*relay.Response, error)) error {
	return r.registry.Register(elementID, eventType, relay.HandlerFunc(fn))
}

// BindClick registers a side-effect click handler with no input or output.
func (r *Router) BindClick(elementID string, fn func()) error {
	return r.registry.Register(elementID, "click", relay.SideEffect(fn))
}

// Registry exposes the underlying registry for advanced composition.
func (r *Router) Registry() *relay.Registry { return r.registry }

// Freeze ends the registration phase. Called by Server.Run before serving.
func (r *Router) Freeze() { r.registry.Freeze() }

// Handler returns the composed mux.
func (r *Router) Handler() http.Handler { return r.mux }

// ConnectionCount reports the number of live streaming sessions.
func (r *Router) ConnectionCount() int { return r.pool.count() }

// CloseConnections tears down all live streaming sessions.
func (r *Router) CloseConnections() { r.pool.closeAll() }

func (r *Router) registerHTTPHandlers() {
	r.mux.HandleFunc(StreamPath, r.handleStream)
	r.mux.HandleFunc(FallbackPath, r.handleFallback)

	logger := log.With().Str("component", "webui").Logger()
	if r.cfg.StaticFS != nil {
		r.mux.Handle("/", http.FileServer(http.FS(r.cfg.StaticFS)))
		logger.Info().Msg("serving embedded static assets at /")
		return
	}
	if r.cfg.StaticDir != "" {
		r.mux.Handle("/", http.FileServer(http.Dir(r.cfg.StaticDir)))
		logger.Info().Str("dir", r.cfg.StaticDir).Msg("serving static assets at /")
		return
	}
	logger.Warn().Msg("no static assets configured; only relay endpoints mounted")
}
