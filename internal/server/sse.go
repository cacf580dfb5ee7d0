package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dialectic-ai/dialectic/internal/dialogue"
	"github.com/dialectic-ai/dialectic/internal/stream"
)

// keepaliveInterval spaces out SSE pings so intermediary proxies do not drop
// idle connections.
const keepaliveInterval = 15 * time.Second

type messagesEvent struct {
	Messages   []dialogue.Message `json:"messages"`
	InProgress bool               `json:"inProgress"`
}

type pingEvent struct {
	Ping bool `json:"ping"`
}

type errorEvent struct {
	Error string `json:"error"`
}

// handleStream pushes debate messages to the client as server-sent events.
// The full backlog is delivered first, then live updates until the session
// reaches a terminal state or the client disconnects.
func (s *HTTPServer) handleStream(w http.ResponseWriter, r *http.Request) {
	debateID := r.URL.Query().Get("debateId")
	if debateID == "" {
		writeError(w, http.StatusBadRequest, "debateId query parameter is required")
		return
	}

	sub, err := s.app.Broker.Subscribe(debateID)
	if err != nil {
		var unknown *stream.UnknownSessionError
		if errors.As(err, &unknown) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer sub.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			sendEvent(w, flusher, pingEvent{Ping: true})
		case <-sub.Updated():
			messages, inProgress := sub.Drain()
			if messages == nil {
				messages = []dialogue.Message{}
			}
			sendEvent(w, flusher, messagesEvent{Messages: messages, InProgress: inProgress})
			if !inProgress {
				if errMsg := sub.Err(); errMsg != "" {
					sendEvent(w, flusher, errorEvent{Error: errMsg})
				}
				return
			}
		}
	}
}

func sendEvent(w http.ResponseWriter, flusher http.Flusher, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal stream event", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
