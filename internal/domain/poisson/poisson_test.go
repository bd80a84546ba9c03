package poisson_test

import (
	"math"
	"testing"

	"github.com/okian/goalcast/internal/domain/poisson"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPMF(t *testing.T) {
	Convey("Given the exact Poisson PMF", t, func() {
		Convey("Then known values match", func() {
			So(poisson.PMF(1, 0), ShouldAlmostEqual, math.Exp(-1), 1e-12)
			So(poisson.PMF(2, 3), ShouldAlmostEqual, math.Exp(-2)*8/6, 1e-12)
			So(poisson.PMF(0, 0), ShouldEqual, 1)
			So(poisson.PMF(0, 2), ShouldEqual, 0)
		})

		Convey("And invalid input yields zero", func() {
			So(poisson.PMF(1, -1), ShouldEqual, 0)
			So(poisson.PMF(-1, 1), ShouldEqual, 0)
			So(poisson.PMF(math.NaN(), 1), ShouldEqual, 0)
		})

		Convey("And it stays finite for large k", func() {
			p := poisson.PMF(6, 150)
			So(math.IsNaN(p) || math.IsInf(p, 0), ShouldBeFalse)
			So(p, ShouldBeGreaterThanOrEqualTo, 0)
		})
	})
}

func TestTable_Mass(t *testing.T) {
	Convey("Given a default table", t, func() {
		tbl := poisson.NewTable()

		Convey("Then every PMF is non-negative and the mass to k=10 is close to 1", func() {
			for lambda := 0.0; lambda <= 6.0; lambda += 0.1 {
				sum := 0.0
				for k := 0; k <= tbl.MaxK(); k++ {
					p := tbl.PMF(lambda, k)
					So(p, ShouldBeGreaterThanOrEqualTo, 0)
					sum += p
				}
				So(sum, ShouldBeLessThanOrEqualTo, 1+1e-9)
				if lambda <= 3 {
					So(sum, ShouldAlmostEqual, 1, 1e-3)
				} else {
					So(sum, ShouldBeGreaterThan, 0.95)
				}
			}
		})

		Convey("And the CDF is monotone in k", func() {
			for lambda := 0.0; lambda <= 6.0; lambda += 0.5 {
				prev := 0.0
				for k := 0; k <= tbl.MaxK(); k++ {
					c := tbl.CDF(lambda, k)
					So(c, ShouldBeGreaterThanOrEqualTo, prev)
					prev = c
				}
			}
		})

		Convey("And the CDF matches the exact computation on grid points", func() {
			So(tbl.CDF(1.5, 2), ShouldAlmostEqual, poisson.CDF(1.5, 2), 1e-12)
			So(tbl.CDF(2.3, 0), ShouldAlmostEqual, math.Exp(-2.3), 1e-9)
		})
	})
}

func TestTable_Domain(t *testing.T) {
	Convey("Given out-of-domain inputs", t, func() {
		tbl := poisson.NewTable()

		Convey("Then lambda is quantised to the nearest grid value", func() {
			So(tbl.CDF(1.04, 1), ShouldEqual, tbl.CDF(1.0, 1))
			So(tbl.CDF(1.06, 1), ShouldEqual, tbl.CDF(1.1, 1))
		})

		Convey("And lambda is clamped instead of failing", func() {
			So(tbl.CDF(42, 3), ShouldEqual, tbl.CDF(tbl.MaxLambda(), 3))
			So(tbl.CDF(-3, 0), ShouldEqual, 1)
			So(tbl.CDF(math.NaN(), 0), ShouldEqual, 1)
			So(tbl.CDF(math.Inf(1), 0), ShouldEqual, tbl.CDF(tbl.MaxLambda(), 0))
		})

		Convey("And k outside the table is handled", func() {
			So(tbl.CDF(2, -1), ShouldEqual, 0)
			So(tbl.CDF(2, 99), ShouldEqual, tbl.CDF(2, tbl.MaxK()))
			So(tbl.PMF(2, 99), ShouldEqual, 0)
		})

		Convey("And options change the grid", func() {
			small := poisson.NewTable(poisson.WithMaxLambda(2), poisson.WithStep(0.5), poisson.WithMaxK(4))
			So(small.MaxK(), ShouldEqual, 4)
			So(small.CDF(1.6, 1), ShouldAlmostEqual, poisson.CDF(1.5, 1), 1e-12)
		})
	})
}
