package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/williamwith4ms/web-ui/pkg/relay"
	"github.com/williamwith4ms/web-ui/pkg/webui"
)

// Observed defaults of the relay protocol.
const (
	DefaultBackoffBase       = 1000 * time.Millisecond
	DefaultBackoffMax        = 30000 * time.Millisecond
	DefaultBackoffMultiplier = 1.5
	DefaultRequestTimeout    = 10000 * time.Millisecond
	DefaultFallbackGrace     = 2000 * time.Millisecond
)

// ErrClientClosed is returned by Do once the client has shut down.
var ErrClientClosed = errors.New("client is closed")

// Config holds client settings. Start from DefaultConfig.
type Config struct {
	// BaseURL is the backend's HTTP origin, e.g. "http://127.0.0.1:3030".
	BaseURL string

	BackoffBase       time.Duration
	BackoffMax        time.Duration
	BackoffMultiplier float64

	// RequestTimeout bounds each streaming request; it also caps fallback
	// calls.
	RequestTimeout time.Duration
	// FallbackGrace is how long after a connect cycle starts events keep
	// queueing for the stream before they route to the fallback transport.
	FallbackGrace time.Duration

	Dialer     *websocket.Dialer
	HTTPClient *http.Client
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		BackoffBase:       DefaultBackoffBase,
		BackoffMax:        DefaultBackoffMax,
		BackoffMultiplier: DefaultBackoffMultiplier,
		RequestTimeout:    DefaultRequestTimeout,
		FallbackGrace:     DefaultFallbackGrace,
	}
}

// Client is the single relay client of a page session. It owns the streaming
// connection, the pending request table and the event queue; all three are
// discarded with the session and hold no backend state.
type Client struct {
	cfg         Config
	streamURL   string
	fallbackURL string
	dialer      *websocket.Dialer
	httpc       *http.Client

	pending *PendingTable
	emitCh  chan queuedEvent
	state   atomic.Int32

	started atomic.Bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

type dialResult struct {
	conn *websocket.Conn
	err  error
}

func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Errorf("unsupported base URL scheme %q", base.Scheme)
	}
	streamURL := *base
	streamURL.Scheme = "ws" + strings.TrimPrefix(base.Scheme, "http")
	streamURL.Path = webui.StreamPath

	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = DefaultBackoffMax
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.FallbackGrace <= 0 {
		cfg.FallbackGrace = DefaultFallbackGrace
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = http.DefaultClient
	}

	c := &Client{
		cfg:         cfg,
		streamURL:   streamURL.String(),
		fallbackURL: base.String() + webui.FallbackPath,
		dialer:      dialer,
		httpc:       httpc,
		pending:     NewPendingTable(),
		emitCh:      make(chan queuedEvent, 64),
		doneCh:      make(chan struct{}),
	}
	c.state.Store(int32(StateConnecting))
	return c, nil
}

// Start launches the connection run loop. It may be called once.
func (c *Client) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("ctx is nil")
	}
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("client already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.run(runCtx)
	return nil
}

// Close stops the run loop and waits for it to exit.
func (c *Client) Close() {
	if c == nil || !c.started.Load() {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	<-c.doneCh
}

// State reports the current connection state.
func (c *Client) State() ConnState {
	return ConnState(c.state.Load())
}

// Pending reports the number of in-flight streaming requests.
func (c *Client) Pending() int {
	return c.pending.Len()
}

// Emit raises a UI event. done is invoked exactly once, with the matched
// response, a timeout failure, or a transport failure. Transport selection
// follows the connection state: streaming when open, queued while a connect
// attempt is within its grace window, fallback HTTP otherwise. Emit requires
// a running client: before Start or after Close, done fires immediately with
// a failure response.
func (c *Client) Emit(ev *relay.Event, done func(*relay.Response)) {
	if done == nil {
		done = func(*relay.Response) {}
	}
	if ev == nil {
		done(&relay.Response{Success: false, Message: "nil event"})
		return
	}
	if !c.started.Load() {
		done(&relay.Response{Success: false, Message: "client not started"})
		return
	}
	select {
	case <-c.doneCh:
		done(&relay.Response{Success: false, Message: ErrClientClosed.Error()})
		return
	default:
	}
	select {
	case c.emitCh <- queuedEvent{ev: ev, done: done}:
	case <-c.doneCh:
		done(&relay.Response{Success: false, Message: ErrClientClosed.Error()})
	}
}

// Do raises a UI event and blocks until its outcome or ctx cancellation.
func (c *Client) Do(ctx context.Context, ev *relay.Event) (*relay.Response, error) {
	ch := make(chan *relay.Response, 1)
	c.Emit(ev, func(resp *relay.Response) { ch <- resp })
	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) setState(s ConnState) {
	old := ConnState(c.state.Swap(int32(s)))
	if old != s {
		log.Debug().Str("component", "client").Stringer("from", old).Stringer("to", s).Msg("connection state change")
	}
}

// run is the session's single cooperative loop. It exclusively owns the
// event queue, the request id counter and the connection handle; everything
// else talks to it through channels.
func (c *Client) run(ctx context.Context) {
	defer close(c.doneCh)

	var (
		queue   eventQueue
		nextID  uint32 = 1
		conn    *websocket.Conn
		respCh  chan *relay.Response
		readErr chan error

		dialCh  chan dialResult
		retryCh <-chan time.Time
		graceCh <-chan time.Time

		retryTimer *time.Timer
		graceTimer *time.Timer

		fallbackOnly bool
	)
	backoff := NewBackoff(c.cfg.BackoffBase, c.cfg.BackoffMax, c.cfg.BackoffMultiplier)

	stopTimer := func(t *time.Timer) {
		if t != nil {
			t.Stop()
		}
	}
	defer func() {
		stopTimer(retryTimer)
		stopTimer(graceTimer)
		if conn != nil {
			_ = conn.Close()
		}
		for _, qe := range queue.drain() {
			qe.done(&relay.Response{Success: false, Message: ErrClientClosed.Error()})
		}
	}()

	// armGrace opens a fresh queue-for-stream window. One marks the start of
	// every disconnected period: initial startup and each Open -> Closed.
	armGrace := func() {
		stopTimer(graceTimer)
		graceTimer = time.NewTimer(c.cfg.FallbackGrace)
		graceCh = graceTimer.C
		fallbackOnly = false
	}

	startDial := func() {
		c.setState(StateConnecting)
		ch := make(chan dialResult, 1)
		dialCh = ch
		go func() {
			conn, resp, err := c.dialer.DialContext(ctx, c.streamURL, nil)
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
			ch <- dialResult{conn: conn, err: err}
		}()
	}

	scheduleRetry := func() {
		c.setState(StateClosed)
		delay := backoff.Next()
		log.Debug().Str("component", "client").Dur("delay", delay).Msg("scheduling reconnect")
		c.setState(StateReconnecting)
		stopTimer(retryTimer)
		retryTimer = time.NewTimer(delay)
		retryCh = retryTimer.C
	}

	sendStream := func(qe queuedEvent) {
		id := nextID
		nextID++
		qe.ev.RequestID = relay.RequestIDRef(id)
		c.pending.Register(id, c.cfg.RequestTimeout, qe.done)
		data, err := qe.ev.Encode()
		if err != nil {
			c.pending.Resolve(id, &relay.Response{Success: false, Message: err.Error(), RequestID: relay.RequestIDRef(id)})
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// The read loop sees the broken connection and drives the
			// reconnect; the request itself resolves via its timeout.
			log.Warn().Err(err).Str("component", "client").Uint32("request_id", id).Msg("stream write failed")
		}
	}

	armGrace()
	startDial()

	for {
		select {
		case qe := <-c.emitCh:
			switch {
			case conn != nil:
				sendStream(qe)
			case fallbackOnly:
				go c.sendFallback(ctx, qe)
			default:
				queue.push(qe.ev, qe.done)
			}

		case res := <-dialCh:
			dialCh = nil
			if res.err != nil {
				log.Warn().Err(res.err).Str("component", "client").Msg("stream connect failed")
				scheduleRetry()
				continue
			}
			conn = res.conn
			c.setState(StateOpen)
			backoff.Reset()
			stopTimer(graceTimer)
			graceCh = nil
			fallbackOnly = false
			respCh = make(chan *relay.Response, 32)
			readErr = make(chan error, 1)
			go readLoop(conn, respCh, readErr)
			// Flush in insertion order, exactly once.
			for _, qe := range queue.drain() {
				sendStream(qe)
			}

		case resp := <-respCh:
			if resp.RequestID == nil {
				log.Debug().Str("component", "client").Msg("dropping response without request id")
				continue
			}
			c.pending.Resolve(*resp.RequestID, resp)

		case err := <-readErr:
			log.Warn().Err(err).Str("component", "client").Msg("stream connection lost")
			_ = conn.Close()
			conn = nil
			respCh = nil
			readErr = nil
			armGrace()
			scheduleRetry()

		case <-retryCh:
			retryCh = nil
			startDial()

		case <-graceCh:
			graceCh = nil
			if conn != nil {
				continue
			}
			fallbackOnly = true
			drained := queue.drain()
			if len(drained) > 0 {
				log.Debug().Str("component", "client").Int("count", len(drained)).Msg("grace window elapsed, routing queued events to fallback")
			}
			for _, qe := range drained {
				go c.sendFallback(ctx, qe)
			}

		case <-ctx.Done():
			return
		}
	}
}

// sendFallback performs one stateless request/response exchange. Each call
// is independently paired with its response, so no request id is assigned;
// a caller-supplied id is preserved by the backend.
func (c *Client) sendFallback(ctx context.Context, qe queuedEvent) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	body, err := qe.ev.Encode()
	if err != nil {
		qe.done(&relay.Response{Success: false, Message: err.Error(), RequestID: qe.ev.RequestID})
		return
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.fallbackURL, bytes.NewReader(body))
	if err != nil {
		qe.done(&relay.Response{Success: false, Message: err.Error(), RequestID: qe.ev.RequestID})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpc.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("component", "client").Str("key", qe.ev.Key()).Msg("fallback request failed")
		qe.done(&relay.Response{Success: false, Message: err.Error(), RequestID: qe.ev.RequestID})
		return
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		qe.done(&relay.Response{Success: false, Message: err.Error(), RequestID: qe.ev.RequestID})
		return
	}
	if httpResp.StatusCode != http.StatusOK {
		qe.done(&relay.Response{
			Success:   false,
			Message:   errors.Errorf("fallback transport: %s", strings.TrimSpace(string(data))).Error(),
			RequestID: qe.ev.RequestID,
		})
		return
	}
	resp, err := relay.ParseResponse(data)
	if err != nil {
		qe.done(&relay.Response{Success: false, Message: err.Error(), RequestID: qe.ev.RequestID})
		return
	}
	qe.done(resp)
}

// readLoop feeds inbound frames to the run loop until the connection errors.
// Hello frames and malformed frames are logged and discarded; neither closes
// the connection.
func readLoop(conn *websocket.Conn, respCh chan<- *relay.Response, errCh chan<- error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			errCh <- err
			return
		}
		if hello, ok := relay.ParseHello(data); ok {
			log.Debug().Str("component", "client").Str("session_id", hello.SessionID).Msg("stream hello received")
			continue
		}
		resp, err := relay.ParseResponse(data)
		if err != nil {
			log.Warn().Err(err).Str("component", "client").Msg("discarding malformed frame")
			continue
		}
		respCh <- resp
	}
}
