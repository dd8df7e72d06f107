package handlers

import (
	"encoding/json"
	"net/http"

	"mathclash/internal/models"
	"mathclash/internal/service"
)

// EventHandler is the HTTP transport adapter. The gateway posts one
// JSON-encoded event per user interaction; the reply carries the text
// and buttons to render. All payload interpretation happens here, the
// state machine only ever sees the tagged Event.
type EventHandler struct {
	game    *service.GameService
	limiter *RateLimiter
}

// NewEventHandler creates a new event handler
func NewEventHandler(game *service.GameService, limiter *RateLimiter) *EventHandler {
	return &EventHandler{game: game, limiter: limiter}
}

type eventRequest struct {
	UserID      int64        `json:"user_id"`
	ChatID      int64        `json:"chat_id,omitempty"`
	Username    string       `json:"username,omitempty"`
	DisplayName string       `json:"display_name,omitempty"`
	Event       models.Event `json:"event"`
}

// HandleEvent handles POST /event
func (h *EventHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "Error decoding event", err)
		return
	}
	if req.UserID == 0 {
		respondWithError(w, http.StatusBadRequest, "user_id is required", "", nil)
		return
	}

	if h.limiter != nil && !h.limiter.Allow(req.UserID) {
		respondWithError(w, http.StatusTooManyRequests, "Слишком много запросов. Подожди немного.", "", nil)
		return
	}

	identity := models.Identity{Username: req.Username, DisplayName: req.DisplayName}
	reply, err := h.game.HandleEvent(r.Context(), req.UserID, req.ChatID, identity, req.Event)
	if err != nil {
		respondWithError(w, http.StatusBadGateway,
			"Не удалось сохранить результат. Попробуй еще раз.",
			"Error handling event", err)
		return
	}

	respondWithJSON(w, http.StatusOK, reply)
}

// HandleHealth handles GET /healthz
func (h *EventHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
