package llm

import (
	"encoding/json"
	"io"
	"net/http"

	"llm-chat/internal/requestid"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ChatPath is the only API route this service answers.
const ChatPath = "/api/chat"

// failureMessage is the single error clients ever see from the chat endpoint.
const failureMessage = "Failed to process request"

// Handler is the http api layer for the chat endpoint.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

// NewHandler creates a new handler injecting the service.
func NewHandler(s Service, logger zerolog.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

// RegisterRoutes attaches the chat endpoint to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post(ChatPath, h.handleChat)
}

// chatRequest is the DTO for what the browser sends.
type chatRequest struct {
	Messages []*ChatMessage `json:"messages"`
}

// handleChat forwards the conversation to the model and relays its stream.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChatRequest(r.Body)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	stream, err := h.service.StreamChat(r.Context(), req.Messages)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer stream.Close()

	// Headers are on the wire once relaying starts, so a failure here can only be logged.
	if err := stream.Relay(w); err != nil {
		h.logger.Warn().
			Err(err).
			Str("request_id", requestid.Get(r.Context())).
			Msg("chat stream relay interrupted")
	}
}

// decodeChatRequest parses the body, which must be exactly one JSON object.
func decodeChatRequest(body io.Reader) (*chatRequest, error) {
	dec := json.NewDecoder(body)

	var req *chatRequest
	if err := dec.Decode(&req); err != nil {
		return nil, errors.Wrap(err, "could not decode chat request")
	}
	if req == nil {
		return nil, errors.New("chat request body must be a JSON object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after chat request body")
	}

	return req, nil
}

// fail logs the cause and sends the uniform error response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().
		Err(err).
		Str("request_id", requestid.Get(r.Context())).
		Msg("Error processing chat request")
	writeError(w, http.StatusInternalServerError, failureMessage)
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError is a helper for sending a standardized json error.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
