package encoder_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/pictodeck/ranker/internal/domain/encoder"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEncoderFitTransform(t *testing.T) {
	Convey("Given an encoder fit over identities with duplicates", t, func() {
		enc := encoder.New()
		enc.Fit([]string{"u3", "u1", "u2", "u1", "u3"})

		Convey("Then Len should count distinct identities", func() {
			So(enc.Len(), ShouldEqual, 3)
		})

		Convey("Then every fit identity should map to a unique code in range", func() {
			seen := make(map[int]bool)
			for _, v := range []string{"u1", "u2", "u3"} {
				code, err := enc.Transform(v)
				So(err, ShouldBeNil)
				So(code, ShouldBeGreaterThanOrEqualTo, 0)
				So(code, ShouldBeLessThan, 3)
				So(seen[code], ShouldBeFalse)
				seen[code] = true
			}
		})

		Convey("Then Inverse should round-trip each code", func() {
			for _, v := range []string{"u1", "u2", "u3"} {
				code, err := enc.Transform(v)
				So(err, ShouldBeNil)
				raw, err := enc.Inverse(code)
				So(err, ShouldBeNil)
				So(raw, ShouldEqual, v)
			}
		})

		Convey("Then transforming an unseen identity should fail with ErrUnknownIdentity", func() {
			_, err := enc.Transform("u4")
			So(err, ShouldNotBeNil)
			So(errors.Is(err, encoder.ErrUnknownIdentity), ShouldBeTrue)
		})

		Convey("Then Inverse of an out-of-range code should fail", func() {
			_, err := enc.Inverse(3)
			So(errors.Is(err, encoder.ErrUnknownIdentity), ShouldBeTrue)
			_, err = enc.Inverse(-1)
			So(errors.Is(err, encoder.ErrUnknownIdentity), ShouldBeTrue)
		})
	})
}

func TestEncoderDeterminism(t *testing.T) {
	Convey("Given two encoders fit on the same set in different orders", t, func() {
		a := encoder.New()
		b := encoder.New()
		a.Fit([]string{"card-9", "card-1", "card-5"})
		b.Fit([]string{"card-5", "card-9", "card-1"})

		Convey("Then they should assign identical codes", func() {
			for _, v := range []string{"card-1", "card-5", "card-9"} {
				ca, err := a.Transform(v)
				So(err, ShouldBeNil)
				cb, err := b.Transform(v)
				So(err, ShouldBeNil)
				So(ca, ShouldEqual, cb)
			}
		})
	})
}

func TestEncoderJSONRoundTrip(t *testing.T) {
	Convey("Given a fitted encoder", t, func() {
		enc := encoder.New()
		enc.Fit([]string{"a", "b", "c"})

		Convey("When serializing and restoring it", func() {
			data, err := json.Marshal(enc)
			So(err, ShouldBeNil)

			restored := encoder.New()
			So(json.Unmarshal(data, restored), ShouldBeNil)

			Convey("Then codes should survive the round trip", func() {
				So(restored.Len(), ShouldEqual, 3)
				for _, v := range []string{"a", "b", "c"} {
					orig, err := enc.Transform(v)
					So(err, ShouldBeNil)
					got, err := restored.Transform(v)
					So(err, ShouldBeNil)
					So(got, ShouldEqual, orig)
				}
			})
		})
	})
}

func TestEncoderUnfitted(t *testing.T) {
	Convey("Given an unfitted encoder", t, func() {
		enc := encoder.New()

		Convey("Then Len is zero and any transform fails", func() {
			So(enc.Len(), ShouldEqual, 0)
			_, err := enc.Transform("anything")
			So(errors.Is(err, encoder.ErrUnknownIdentity), ShouldBeTrue)
		})
	})
}
