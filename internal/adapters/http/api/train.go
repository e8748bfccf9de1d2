// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	service "github.com/pictodeck/ranker/internal/app"
	"github.com/pictodeck/ranker/internal/domain/trainer"
)

// TrainHandler handles admin training requests.
type TrainHandler struct {
	deps Dependencies
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(deps Dependencies) *TrainHandler {
	return &TrainHandler{deps: deps}
}

// HandlePostTrain handles POST /admin/train requests. Training is
// synchronous; the response carries the run report. An empty ledger is a
// client-visible condition, not a server fault.
func (h *TrainHandler) HandlePostTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	report, err := h.deps.Train(r.Context())
	switch {
	case errors.Is(err, service.ErrTrainingInProgress):
		writeError(w, http.StatusConflict, "training_in_progress", err)
		return
	case errors.Is(err, trainer.ErrEmptyDataset):
		writeError(w, http.StatusUnprocessableEntity, "empty_dataset", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
