package relay

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrRegistryFrozen is returned by Register once the registry has been
// frozen for serving.
var ErrRegistryFrozen = errors.New("registry is frozen")

// Registry maps binding keys to handlers. Bindings are registered during
// setup, before the transports accept traffic; Freeze marks the end of the
// registration phase, after which the map is read-only and lookups may run
// concurrently from any number of in-flight dispatches.
//
// Registering the same key twice overwrites the earlier binding; the last
// registration wins.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	frozen   bool
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register binds a handler to an (element id, event type) pair.
func (r *Registry) Register(elementID, eventType string, h Handler) error {
	if r == nil {
		return errors.New("registry is nil")
	}
	if h == nil {
		return errors.New("handler is nil")
	}
	key := BindingKey(elementID, eventType)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errors.Wrapf(ErrRegistryFrozen, "register %s", key)
	}
	if _, ok := r.handlers[key]; ok {
		log.Debug().Str("component", "relay").Str("key", key).Msg("overwriting existing binding")
	}
	r.handlers[key] = h
	return nil
}

// Lookup returns the handler bound to the pair, if any.
func (r *Registry) Lookup(elementID, eventType string) (Handler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[BindingKey(elementID, eventType)]
	return h, ok
}

// Freeze ends the registration phase. Idempotent.
func (r *Registry) Freeze() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Len reports the number of registered bindings.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
