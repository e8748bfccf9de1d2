// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	service "github.com/pictodeck/ranker/internal/app"
	"github.com/pictodeck/ranker/internal/domain/model"
)

// InteractionsHandler handles click ingestion requests.
type InteractionsHandler struct {
	deps Dependencies
}

// NewInteractionsHandler creates a new interactions handler.
func NewInteractionsHandler(deps Dependencies) *InteractionsHandler {
	return &InteractionsHandler{deps: deps}
}

// HandlePostInteraction handles POST /interactions requests.
func (h *InteractionsHandler) HandlePostInteraction(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_interaction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	e := model.ClickEvent{
		EventID: req.EventID,
		UserID:  req.UserID,
		CardID:  req.CardID,
		Count:   req.Count,
	}
	if req.TS != "" {
		// Validated above; parse cannot fail here.
		e.TS, _ = time.Parse(time.RFC3339, req.TS)
	}

	duplicate, err := h.deps.RecordClick(r.Context(), e)
	switch {
	case errors.Is(err, service.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
