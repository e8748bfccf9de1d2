// Package seed generates fake interactions against a running ranker service
// so a model can be trained without real traffic.
package seed

import "time"

// Config holds configuration for the interaction seeder.
type Config struct {
	BaseURL string        // Base URL of the service
	Users   int           // Number of distinct users
	Cards   int           // Number of distinct cards
	Days    int           // Number of calendar days to spread clicks over
	Workers int           // Number of concurrent submitters
	Timeout time.Duration // HTTP request timeout
	Train   bool          // Trigger a training run after seeding
}

// Interaction mirrors the POST /interactions payload.
type Interaction struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	CardID  string `json:"card_id"`
	Count   int64  `json:"count"`
	TS      string `json:"ts"`
}

// Stats holds seeding statistics.
type Stats struct {
	Generated  int
	Successful int64
	Duplicate  int64
	Failed     int64
	StartTime  time.Time
	Duration   time.Duration
}
