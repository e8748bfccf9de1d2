// Package ranker orders candidate cards by predicted engagement.
//
// Ranking is a pure enhancement over serving the board: when no bundle
// exists the candidates come back in input order, a cold-start user borrows
// the sentinel code, and a cold-start card sinks to the bottom with a zero
// prediction. The output is always a permutation of the input.
package ranker

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pictodeck/ranker/internal/domain/bundle"
	"github.com/pictodeck/ranker/internal/domain/encoder"
	"github.com/pictodeck/ranker/internal/domain/forest"
	"github.com/pictodeck/ranker/internal/domain/model"
	"github.com/pictodeck/ranker/pkg/logger"
	"github.com/pictodeck/ranker/pkg/metrics"
)

// sentinelUserCode stands in for users absent from the trained encoder.
const sentinelUserCode = 0

// Ranker is stateless; one instance serves all users against whatever
// immutable bundle each call receives.
type Ranker struct {
	logger logger.Logger
}

// New creates a Ranker with configuration options.
func New(opts ...Option) *Ranker {
	r := &Ranker{}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logger.Get().Named("ranker")
	}

	return r
}

// Rank orders cards by predicted click count descending for userID at hour.
// A nil bundle or empty candidate set short-circuits to the input order.
// Identity misses are recovered locally; any other prediction failure aborts
// with ErrPrediction wrapped around the cause.
func (r *Ranker) Rank(ctx context.Context, userID string, cards []model.Card, hour int, b *bundle.Bundle) ([]model.Card, error) {
	metrics.RecordRankRequest()

	if b == nil || len(cards) == 0 {
		if b == nil {
			metrics.RecordRankUnrankedServe()
		}
		return cards, nil
	}

	userCode, err := b.UserEncoder.Transform(userID)
	if err != nil {
		if !errors.Is(err, encoder.ErrUnknownIdentity) {
			return nil, fmt.Errorf("%w: %w", ErrPrediction, err)
		}
		// Cold-start user: a best-effort prediction beats an error.
		metrics.RecordRankUnknownUser()
		r.logger.Debug(ctx, "unknown user, using sentinel code", logger.String("user_id", userID))
		userCode = sentinelUserCode
	}

	type scored struct {
		card  model.Card
		score float64
		pos   int
	}

	items := make([]scored, len(cards))
	for i, card := range cards {
		items[i] = scored{card: card, pos: i}

		cardCode, err := b.CardEncoder.Transform(card.ID)
		if err != nil {
			if !errors.Is(err, encoder.ErrUnknownIdentity) {
				return nil, fmt.Errorf("%w: %w", ErrPrediction, err)
			}
			// Card never seen in training: keep it, at lowest priority.
			metrics.RecordRankUnknownCard()
			continue
		}

		pred, err := b.Model.Predict([forest.FeatureCount]float64{
			float64(userCode), float64(cardCode), float64(hour),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPrediction, err)
		}
		items[i].score = pred
	}

	// Stable on the original position so ties keep their input order.
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].score > items[b].score
	})

	ranked := make([]model.Card, len(items))
	for i, it := range items {
		ranked[i] = it.card
	}
	return ranked, nil
}
