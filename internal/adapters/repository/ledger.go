// Package repository defines the interaction ledger interface and its
// storage adapters.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pictodeck/ranker/internal/domain/model"
)

// Ledger is the durable store of per-(user, card, hour bucket) click counts.
// At most one record exists per triple; RecordClick resolves concurrent
// writes for the same triple into a merge, never an error.
type Ledger interface {
	// RecordClick inserts a record for (userID, cardID, bucketStart) or
	// merges into the existing one: counts add, bucketEnd takes the latest
	// write. Returns true when a new record was created.
	RecordClick(ctx context.Context, userID, cardID string, bucketStart, bucketEnd time.Time, count int64) (bool, error)

	// Snapshot returns a copy of every ledger record for offline training.
	Snapshot(ctx context.Context) ([]model.Interaction, error)

	// Count returns the number of records tracked in the ledger.
	Count(ctx context.Context) int
}

// validateClick enforces the ledger write contract before any storage work.
func validateClick(userID, cardID string, count int64) error {
	switch {
	case strings.TrimSpace(userID) == "":
		return fmt.Errorf("%w: missing user id", ErrValidation)
	case strings.TrimSpace(cardID) == "":
		return fmt.Errorf("%w: missing card id", ErrValidation)
	case count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrValidation, count)
	}
	return nil
}
