package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/execution-hub/supervisor/internal/application/orchestrator"
	"github.com/execution-hub/supervisor/internal/infrastructure/sse"
)

// sseEndpoint streams dispatch stage events. Clients that send X-User-ID
// only receive events for their own requests.
func (s *Server) sseEndpoint(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "client_id required")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}
	userID := callerContextFrom(r.Context())[orchestrator.CallerUserID]

	client := sse.NewClient(clientID, userID)
	s.sseHub.Register(client)
	defer s.sseHub.Unregister(client)

	ack, _ := json.Marshal(map[string]string{"client_id": clientID, "user_id": userID})
	if err := s.sseHub.SendToClient(clientID, sse.NewMessage(sse.EventConnected, ack)); err != nil {
		s.logger.Warn().Err(err).Str("client_id", clientID).Msg("failed to queue SSE connect message")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case msg, open := <-client.Messages:
			if !open {
				return
			}
			payload, _ := json.Marshal(msg)
			_, _ = w.Write([]byte("event: " + msg.Event + "\n"))
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}
