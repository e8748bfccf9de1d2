// Package trainer turns a ledger snapshot into a ranking model bundle.
//
// The pipeline: aggregate records by (user, card, hour of day) summing click
// counts, fit identity encoders over the aggregated ids, split the rows into
// training and held-out partitions with a fixed seed, and fit the forest on
// the training partition. Calendar dates and bucket ends are discarded; the
// model predicts expected clicks for "this user, this card, this hour of
// day" regardless of which day the history happened on.
package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/pictodeck/ranker/internal/domain/bundle"
	"github.com/pictodeck/ranker/internal/domain/encoder"
	"github.com/pictodeck/ranker/internal/domain/forest"
	"github.com/pictodeck/ranker/internal/domain/model"
	"github.com/pictodeck/ranker/pkg/logger"
)

// Default training configuration constants.
const (
	defaultTestFraction = 0.2
	defaultSplitSeed    = 42
)

// Trainer is the offline batch job fitting one bundle per invocation.
type Trainer struct {
	forestOpts   []forest.Option
	testFraction float64
	splitSeed    int64

	logger logger.Logger
}

// New creates a Trainer with configuration options.
func New(opts ...Option) *Trainer {
	t := &Trainer{
		testFraction: defaultTestFraction,
		splitSeed:    defaultSplitSeed,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.logger == nil {
		t.logger = logger.Get().Named("trainer")
	}

	return t
}

// aggRow is one aggregated training row before encoding.
type aggRow struct {
	userID string
	cardID string
	hour   int
	clicks int64
}

// Train fits a bundle from a ledger snapshot. Fails with ErrEmptyDataset
// when the snapshot has no records; training cannot proceed without at least
// one observation.
func (t *Trainer) Train(ctx context.Context, snapshot []model.Interaction) (*bundle.Bundle, *model.TrainingReport, error) {
	if len(snapshot) == 0 {
		return nil, nil, ErrEmptyDataset
	}

	start := time.Now()

	rows := aggregate(snapshot)

	userEnc, cardEnc := encoder.New(), encoder.New()
	userIDs := make([]string, 0, len(rows))
	cardIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.userID)
		cardIDs = append(cardIDs, r.cardID)
	}
	userEnc.Fit(userIDs)
	cardEnc.Fit(cardIDs)

	samples := make([]forest.Sample, len(rows))
	for i, r := range rows {
		u, err := userEnc.Transform(r.userID)
		if err != nil {
			return nil, nil, fmt.Errorf("encode user: %w", err)
		}
		c, err := cardEnc.Transform(r.cardID)
		if err != nil {
			return nil, nil, fmt.Errorf("encode card: %w", err)
		}
		samples[i] = forest.Sample{
			Features: [forest.FeatureCount]float64{float64(u), float64(c), float64(r.hour)},
			Target:   float64(r.clicks),
		}
	}

	train, held := split(samples, t.testFraction, t.splitSeed)

	f := forest.New(t.forestOpts...)
	if err := f.Fit(ctx, train); err != nil {
		return nil, nil, fmt.Errorf("fit forest: %w", err)
	}

	b := &bundle.Bundle{
		Model:       f,
		UserEncoder: userEnc,
		CardEncoder: cardEnc,
		TrainedAt:   time.Now().UTC(),
	}

	report := &model.TrainingReport{
		RowsTrained: len(train),
		RowsHeldOut: len(held),
		Users:       userEnc.Len(),
		Cards:       cardEnc.Len(),
		Duration:    time.Since(start),
		DurationMS:  time.Since(start).Milliseconds(),
		TrainedAt:   b.TrainedAt,
	}

	t.logger.Info(ctx, "training run complete",
		logger.Int("rows_trained", report.RowsTrained),
		logger.Int("rows_held_out", report.RowsHeldOut),
		logger.Int("users", report.Users),
		logger.Int("cards", report.Cards),
		logger.Duration("duration", report.Duration),
	)

	return b, report, nil
}

// aggregate groups records by (user, card, hour of day) and sums counts.
// Output order is deterministic so the downstream split is reproducible.
func aggregate(snapshot []model.Interaction) []aggRow {
	type key struct {
		userID string
		cardID string
		hour   int
	}

	sums := make(map[key]int64, len(snapshot))
	for _, rec := range snapshot {
		k := key{userID: rec.UserID, cardID: rec.CardID, hour: rec.Hour()}
		sums[k] += rec.ClickCount
	}

	rows := make([]aggRow, 0, len(sums))
	for k, clicks := range sums {
		rows = append(rows, aggRow{userID: k.userID, cardID: k.cardID, hour: k.hour, clicks: clicks})
	}
	sort.Slice(rows, func(a, b int) bool {
		if rows[a].userID != rows[b].userID {
			return rows[a].userID < rows[b].userID
		}
		if rows[a].cardID != rows[b].cardID {
			return rows[a].cardID < rows[b].cardID
		}
		return rows[a].hour < rows[b].hour
	})
	return rows
}

// split shuffles samples with a fixed seed and carves off the held-out tail.
// Tiny datasets keep everything in the training partition; a model fit on
// nothing serves nobody.
func split(samples []forest.Sample, testFraction float64, seed int64) (train, held []forest.Sample) {
	shuffled := make([]forest.Sample, len(samples))
	copy(shuffled, samples)

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible splits
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nHeld := int(float64(len(shuffled)) * testFraction)
	if nHeld >= len(shuffled) {
		nHeld = len(shuffled) - 1
	}
	if nHeld < 0 {
		nHeld = 0
	}

	cut := len(shuffled) - nHeld
	return shuffled[:cut], shuffled[cut:]
}
