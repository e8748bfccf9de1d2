// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
)

// RankHandler handles board ranking requests.
type RankHandler struct {
	deps Dependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps Dependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandlePostRank handles POST /rank requests. A board always comes back:
// without a trained bundle, or when prediction fails, the cards are echoed
// in input order with ranked=false.
func (h *RankHandler) HandlePostRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rank"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	hour := -1
	if req.Hour != nil {
		hour = *req.Hour
	}

	cards, effectiveHour, ranked := h.deps.Rank(r.Context(), req.UserID, req.Cards, hour)
	writeJSON(w, http.StatusOK, rankResponse{
		UserID: req.UserID,
		Hour:   effectiveHour,
		Ranked: ranked,
		Cards:  cards,
	})
}
