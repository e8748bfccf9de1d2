package ranker_test

import (
	"context"
	"testing"
	"time"

	"github.com/pictodeck/ranker/internal/domain/bundle"
	"github.com/pictodeck/ranker/internal/domain/model"
	"github.com/pictodeck/ranker/internal/domain/ranker"
	"github.com/pictodeck/ranker/internal/domain/trainer"
	"github.com/pictodeck/ranker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// trainedBundle fits a bundle where u1 clicked c2 far more than c1 at hour 9.
func trainedBundle(t *testing.T) *bundle.Bundle {
	t.Helper()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	snapshot := []model.Interaction{
		{UserID: "u1", CardID: "c1", BucketStart: start, BucketEnd: start.Add(time.Hour), ClickCount: 3},
		{UserID: "u1", CardID: "c2", BucketStart: start, BucketEnd: start.Add(time.Hour), ClickCount: 7},
	}
	b, _, err := trainer.New(trainer.WithTestFraction(0)).Train(context.Background(), snapshot)
	if err != nil {
		t.Fatalf("train fixture bundle: %v", err)
	}
	return b
}

func cardIDs(cards []model.Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func TestRankNoBundleFallback(t *testing.T) {
	Convey("Given no trained bundle", t, func() {
		r := ranker.New()
		cards := []model.Card{{ID: "c3"}, {ID: "c1"}, {ID: "c2"}}

		Convey("Then candidates should come back unchanged in input order", func() {
			ranked, err := r.Rank(context.Background(), "u1", cards, 9, nil)
			So(err, ShouldBeNil)
			So(cardIDs(ranked), ShouldResemble, []string{"c3", "c1", "c2"})
		})
	})
}

func TestRankEmptyCandidates(t *testing.T) {
	Convey("Given an empty candidate set", t, func() {
		r := ranker.New()

		Convey("Then ranking should return it unchanged even with a bundle", func() {
			ranked, err := r.Rank(context.Background(), "u1", nil, 9, trainedBundle(t))
			So(err, ShouldBeNil)
			So(ranked, ShouldBeEmpty)
		})
	})
}

func TestRankOrdersByPredictedEngagement(t *testing.T) {
	Convey("Given a bundle trained on u1 preferring c2 at hour 9", t, func() {
		r := ranker.New()
		b := trainedBundle(t)
		cards := []model.Card{{ID: "c1", TitleEN: "apple"}, {ID: "c2", TitleEN: "water"}}

		Convey("When ranking u1's board at hour 9", func() {
			ranked, err := r.Rank(context.Background(), "u1", cards, 9, b)
			So(err, ShouldBeNil)

			Convey("Then c2 should rank above c1", func() {
				So(cardIDs(ranked), ShouldResemble, []string{"c2", "c1"})
			})

			Convey("Then card payloads should pass through unchanged", func() {
				So(ranked[0].TitleEN, ShouldEqual, "water")
				So(ranked[1].TitleEN, ShouldEqual, "apple")
			})
		})
	})
}

func TestRankIsPermutation(t *testing.T) {
	Convey("Given a candidate set with cards unknown to the bundle", t, func() {
		r := ranker.New()
		b := trainedBundle(t)
		cards := []model.Card{{ID: "c9"}, {ID: "c2"}, {ID: "c8"}, {ID: "c1"}}

		Convey("When ranking", func() {
			ranked, err := r.Rank(context.Background(), "u1", cards, 9, b)
			So(err, ShouldBeNil)

			Convey("Then output should contain exactly the input cards", func() {
				So(len(ranked), ShouldEqual, len(cards))
				seen := make(map[string]int)
				for _, c := range ranked {
					seen[c.ID]++
				}
				for _, c := range cards {
					So(seen[c.ID], ShouldEqual, 1)
				}
			})

			Convey("Then unknown cards should sort below predicted ones, keeping input order", func() {
				So(cardIDs(ranked), ShouldResemble, []string{"c2", "c1", "c9", "c8"})
			})
		})
	})
}

func TestRankColdStartUser(t *testing.T) {
	Convey("Given a user the encoders never saw", t, func() {
		r := ranker.New()
		b := trainedBundle(t)
		cards := []model.Card{{ID: "c1"}, {ID: "c2"}}

		Convey("Then ranking should succeed with the sentinel user", func() {
			ranked, err := r.Rank(context.Background(), "stranger", cards, 9, b)
			So(err, ShouldBeNil)
			So(len(ranked), ShouldEqual, 2)
		})
	})
}

func TestRankStableTies(t *testing.T) {
	Convey("Given candidates that all miss the card encoder", t, func() {
		r := ranker.New()
		b := trainedBundle(t)
		cards := []model.Card{{ID: "x1"}, {ID: "x2"}, {ID: "x3"}}

		Convey("Then equal zero predictions should preserve input order", func() {
			ranked, err := r.Rank(context.Background(), "u1", cards, 9, b)
			So(err, ShouldBeNil)
			So(cardIDs(ranked), ShouldResemble, []string{"x1", "x2", "x3"})
		})
	})
}
