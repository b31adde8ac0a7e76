package relay

// Handler processes a single UI event. Implementations come in two shapes:
// side-effect handlers that take no input and report implicit success, and
// response handlers that consume the event payload and produce a Response.
// Both are invoked through Handle so the dispatcher never inspects which
// shape it got.
type Handler interface {
	Handle(ev *Event) (*Response, error)
}

// HandlerFunc adapts a response-producing function to the Handler interface.
type HandlerFunc func(ev *Event) (*Response, error)

func (f HandlerFunc) Handle(ev *Event) (*Response, error) { return f(ev) }

type sideEffectHandler struct {
	fn func()
}

func (h sideEffectHandler) Handle(*Event) (*Response, error) {
	h.fn()
	return &Response{Success: true}, nil
}

// SideEffect wraps a no-input, no-output function as a Handler. Success is
// implicit; the dispatcher fills in the request id.
func SideEffect(fn func()) Handler {
	return sideEffectHandler{fn: fn}
}
