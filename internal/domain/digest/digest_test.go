package digest_test

import (
	"testing"

	"github.com/g-but/palfare/internal/domain/digest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCanonical(t *testing.T) {
	Convey("Given two logically equal documents", t, func() {
		type ab struct {
			A string `json:"alpha"`
			B int    `json:"beta"`
		}
		type ba struct {
			B int    `json:"beta"`
			A string `json:"alpha"`
		}

		Convey("When digesting them with different field orders", func() {
			d1, err1 := digest.Canonical(ab{A: "x", B: 7})
			d2, err2 := digest.Canonical(ba{B: 7, A: "x"})

			Convey("Then the digests should match", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(d1, ShouldEqual, d2)
				So(d1, ShouldHaveLength, 64)
			})
		})

		Convey("When digesting documents that differ in one field", func() {
			d1, _ := digest.Canonical(ab{A: "x", B: 7})
			d2, _ := digest.Canonical(ab{A: "x", B: 8})

			Convey("Then the digests should differ", func() {
				So(d1, ShouldNotEqual, d2)
			})
		})
	})

	Convey("Given a map with large integer values", t, func() {
		m := map[string]any{"amount": int64(9007199254740993)}

		Convey("When digesting it twice", func() {
			d1, err1 := digest.Canonical(m)
			d2, err2 := digest.Canonical(m)

			Convey("Then the digest should be stable", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(d1, ShouldEqual, d2)
			})
		})
	})

	Convey("Given a value that cannot be encoded", t, func() {
		Convey("When digesting it", func() {
			_, err := digest.Canonical(make(chan int))

			Convey("Then it should report ErrNotEncodable", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "not encodable")
			})
		})
	})
}

func TestEqual(t *testing.T) {
	Convey("Given digest comparisons", t, func() {
		Convey("Then equal non-empty digests should match", func() {
			So(digest.Equal("abc", "abc"), ShouldBeTrue)
		})

		Convey("Then differing digests should not match", func() {
			So(digest.Equal("abc", "abd"), ShouldBeFalse)
		})

		Convey("Then empty digests should never match", func() {
			So(digest.Equal("", ""), ShouldBeFalse)
		})
	})
}
