// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pictodeck/ranker/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// RecordClick submits a click observation for async ledger application.
	// The boolean reports whether the event was dropped as a duplicate.
	RecordClick(ctx context.Context, e model.ClickEvent) (bool, error)

	// Rank orders cards for a user at an hour of day. The boolean reports
	// whether a trained model produced the order.
	Rank(ctx context.Context, userID string, cards []model.Card, hour int) ([]model.Card, int, bool)

	// Train runs one training cycle and publishes the resulting bundle.
	Train(ctx context.Context) (*model.TrainingReport, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	interactionsHandler *InteractionsHandler
	rankHandler         *RankHandler
	trainHandler        *TrainHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		interactionsHandler: NewInteractionsHandler(deps),
		rankHandler:         NewRankHandler(deps),
		trainHandler:        NewTrainHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/interactions", MetricsMiddleware(s.interactionsHandler.HandlePostInteraction, "interactions"))
	mux.HandleFunc("/rank", MetricsMiddleware(s.rankHandler.HandlePostRank, "rank"))
	mux.HandleFunc("/admin/train", MetricsMiddleware(s.trainHandler.HandlePostTrain, "train"))
}

// interactionRequest mirrors the OpenAPI schema for POST /interactions.
type interactionRequest struct {
	EventID string `json:"event_id,omitempty"`
	UserID  string `json:"user_id"`
	CardID  string `json:"card_id"`
	Count   int64  `json:"count,omitempty"`
	TS      string `json:"ts,omitempty"`
}

func (e interactionRequest) validate() error {
	switch {
	case strings.TrimSpace(e.UserID) == "":
		return errors.New("missing user_id")
	case strings.TrimSpace(e.CardID) == "":
		return errors.New("missing card_id")
	case e.Count < 0:
		return errors.New("count must be positive")
	}
	if e.TS != "" {
		if _, err := time.Parse(time.RFC3339, e.TS); err != nil {
			return errors.New("invalid ts; must be RFC3339")
		}
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// rankRequest mirrors the OpenAPI schema for POST /rank.
type rankRequest struct {
	UserID string       `json:"user_id"`
	Cards  []model.Card `json:"cards"`
	Hour   *int         `json:"hour,omitempty"`
}

func (r rankRequest) validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return errors.New("missing user_id")
	case r.Hour != nil && (*r.Hour < 0 || *r.Hour > 23):
		return errors.New("hour must be between 0 and 23")
	}
	return nil
}

type rankResponse struct {
	UserID string       `json:"user_id"`
	Hour   int          `json:"hour"`
	Ranked bool         `json:"ranked"`
	Cards  []model.Card `json:"cards"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
