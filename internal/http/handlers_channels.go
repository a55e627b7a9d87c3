package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tinydevcrm/eventbridge/internal/domain/model"
	"github.com/tinydevcrm/eventbridge/internal/service"
)

const defaultStreamHeartbeat = 15 * time.Second

// ChannelHandlers provides HTTP handlers for subscription channels, including
// the long-lived SSE listen endpoint.
type ChannelHandlers struct {
	Svc *service.ChannelService
	// Heartbeat is the idle interval between SSE comment frames that keep
	// intermediaries from timing the stream out.
	Heartbeat time.Duration
}

// CreateChannel handles POST /channels/create.
func (h *ChannelHandlers) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req model.CreateChannelRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Owner = OwnerFromContext(r.Context())

	ch, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ch)
}

// OpenChannel handles POST /channels/{id}/open.
func (h *ChannelHandlers) OpenChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathChannelID(w, r)
	if !ok {
		return
	}

	ch, err := h.Svc.Open(r.Context(), OwnerFromContext(r.Context()), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ch)
}

// CloseChannel handles POST /channels/{id}/close.
func (h *ChannelHandlers) CloseChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathChannelID(w, r)
	if !ok {
		return
	}

	ch, err := h.Svc.Close(r.Context(), OwnerFromContext(r.Context()), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, ch)
}

// Listen handles GET /channels/{id}/listen. It attaches the caller to the
// channel's event stream and writes server-sent events until the client
// disconnects or the channel closes. A fresh attachment only sees pushes made
// after it attached; there is no replay.
func (h *ChannelHandlers) Listen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathChannelID(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "streaming_unsupported",
			Err:     errors.New("response writer does not support streaming"),
		})
		return
	}

	sub, err := h.Svc.Listen(r.Context(), OwnerFromContext(r.Context()), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	defer sub.Close()

	// The stream outlives any server-wide write deadline.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "streaming_unsupported",
			Err:     err,
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultStreamHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()

		case ev, open := <-sub.Events():
			if !open {
				// Channel closed server-side; end the stream.
				return
			}
			if writeErr := writeSSEEvent(w, model.EventName, ev); writeErr != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeSSEEvent writes one "event:"/"data:" frame.
func writeSSEEvent(w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	return err
}

// pathChannelID parses the {id} path segment as a channel public identifier.
// Malformed identifiers are indistinguishable from unknown ones.
func pathChannelID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("channel not found"),
		})
		return uuid.UUID{}, false
	}
	return id, true
}
