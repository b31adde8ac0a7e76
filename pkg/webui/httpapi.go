package webui

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/williamwith4ms/web-ui/pkg/relay"
)

// maxEventBody bounds fallback request bodies; UI events are small.
const maxEventBody = 1 << 20

// handleFallback serves the stateless transport: one Event in, one Response
// out, dispatched synchronously. Each call is independently paired with its
// response, so no request id correlation is required; a supplied id is
// preserved in the response.
func (r *Router) handleFallback(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(req.Body, maxEventBody))
	if err != nil {
		http.Error(w, "read body failed", http.StatusBadRequest)
		return
	}
	ev, err := relay.ParseEvent(body)
	if err != nil {
		log.Warn().Err(err).Str("component", "webui").Msg("discarding malformed fallback event")
		http.Error(w, "malformed event", http.StatusBadRequest)
		return
	}

	resp := r.dispatcher.Dispatch(req.Context(), ev)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn().Err(err).Str("component", "webui").Str("key", ev.Key()).Msg("fallback response write failed")
	}
}
