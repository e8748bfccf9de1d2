// Package model contains domain models passed between layers.
package model

import "time"

// Card is a candidate item on a user's board. The ranking core treats it as
// an opaque payload keyed by ID; titles and category ride along unchanged.
type Card struct {
	ID         string `json:"id"`
	TitleEN    string `json:"title_en,omitempty"`
	TitleAR    string `json:"title_ar,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
}

// Interaction is one ledger record: accumulated clicks for a
// (user, card, hour bucket) triple. BucketStart identifies the bucket;
// BucketEnd is overwritten by the latest observation.
type Interaction struct {
	UserID      string    `json:"user_id"`
	CardID      string    `json:"card_id"`
	BucketStart time.Time `json:"bucket_start"`
	BucketEnd   time.Time `json:"bucket_end"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Hour returns the hour of day the record's bucket starts at.
func (i Interaction) Hour() int {
	return i.BucketStart.Hour()
}

// ClickEvent is a single observed click submitted by the logging boundary.
// BucketStart/BucketEnd are zero when the caller wants wall-clock defaulting.
type ClickEvent struct {
	EventID     string
	UserID      string
	CardID      string
	BucketStart time.Time
	BucketEnd   time.Time
	Count       int64
	TS          time.Time
}

// TrainingReport summarizes one completed training run.
type TrainingReport struct {
	RowsTrained int           `json:"rows_trained"`
	RowsHeldOut int           `json:"rows_held_out"`
	Users       int           `json:"users"`
	Cards       int           `json:"cards"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
	TrainedAt   time.Time     `json:"trained_at"`
}

// TruncateToHour floors t to the start of its hour.
func TruncateToHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}
