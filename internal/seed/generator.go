package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Active hours to seed clicks into; boards see traffic during the day, not
// overnight.
const (
	firstActiveHour = 8
	lastActiveHour  = 20
	maxClickCount   = 10
)

// generate builds fake interactions: each user clicks a random subset of
// cards at random daytime hours across the configured day span.
func generate(cfg *Config, rng *rand.Rand) []Interaction {
	users := make([]string, cfg.Users)
	for i := range users {
		users[i] = fmt.Sprintf("user-%03d", i+1)
	}
	cards := make([]string, cfg.Cards)
	for i := range cards {
		cards[i] = uuid.NewString()
	}

	base := time.Now().UTC().AddDate(0, 0, -cfg.Days)

	var out []Interaction
	for _, user := range users {
		for _, card := range cards {
			// Not every user touches every card.
			if rng.Intn(3) == 0 {
				continue
			}
			clicks := 1 + rng.Intn(3)
			for i := 0; i < clicks; i++ {
				day := rng.Intn(cfg.Days)
				hour := firstActiveHour + rng.Intn(lastActiveHour-firstActiveHour+1)
				ts := base.AddDate(0, 0, day).Truncate(24 * time.Hour).Add(time.Duration(hour) * time.Hour)

				out = append(out, Interaction{
					EventID: uuid.NewString(),
					UserID:  user,
					CardID:  card,
					Count:   int64(1 + rng.Intn(maxClickCount)),
					TS:      ts.Format(time.RFC3339),
				})
			}
		}
	}
	return out
}
