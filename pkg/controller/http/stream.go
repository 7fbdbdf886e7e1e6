package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/types"
	"github.com/secmon-lab/caseline/pkg/utils/logging"
)

// keepaliveInterval is how often an SSE comment line is written to keep
// intermediaries from timing out an idle stream.
const keepaliveInterval = 30 * time.Second

// streamCase serves the case's notification stream over Server-Sent
// Events. Each notification becomes one SSE message with the kind as
// the event name. Delivery starts at subscription time; there is no
// replay for late joiners.
func (s *Server) streamCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Subscribing to a nonexistent case is rejected up front
	if _, err := s.uc.Case.GetCase(r.Context(), caseID); err != nil {
		respondError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, goerr.New("streaming unsupported by connection"))
		return
	}

	clientID := types.ClientID(r.URL.Query().Get("client_id"))
	if clientID == "" {
		clientID = types.NewClientID()
	}

	sub, err := s.bus.Subscribe(r.Context(), caseID)
	if err != nil {
		respondError(w, r, goerr.Wrap(err, "failed to subscribe to case channel"))
		return
	}
	defer sub.Close()

	s.registry.Register(caseID, clientID)
	defer s.registry.Unregister(caseID, clientID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	logger := logging.From(r.Context())
	logger.Info("stream opened", "case_id", caseID, "client_id", clientID)
	defer logger.Info("stream closed", "case_id", caseID, "client_id", clientID)

	if err := writeSSE(w, "connected", map[string]any{
		"case_id":   caseID,
		"client_id": clientID,
	}); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case n, ok := <-sub.Notifications():
			if !ok {
				return
			}
			if err := writeSSE(w, n.Kind.String(), n); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSE writes one SSE message with an event name and JSON data
func writeSSE(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return goerr.Wrap(err, "failed to encode SSE payload")
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return goerr.Wrap(err, "failed to write SSE message")
	}
	return nil
}

// listSubscribers returns a point-in-time snapshot of the clients
// streaming the case.
func (s *Server) listSubscribers(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := s.uc.Case.GetCase(r.Context(), caseID); err != nil {
		respondError(w, r, err)
		return
	}

	subscribers := s.registry.Subscribers(caseID)
	respondJSON(w, r, http.StatusOK, map[string]any{
		"case_id":     caseID,
		"subscribers": subscribers,
		"count":       len(subscribers),
	})
}
