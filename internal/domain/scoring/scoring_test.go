package scoring_test

import (
	"testing"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
	"github.com/nicolelin19/mealmax/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScore(t *testing.T) {
	Convey("Given meals with known attributes", t, func() {
		m1 := meal.Meal{Price: 10, Cuisine: "Cuisine 1", Difficulty: meal.DifficultyMed}
		m2 := meal.Meal{Price: 15, Cuisine: "Cuisine 2", Difficulty: meal.DifficultyHigh}
		m3 := meal.Meal{Price: 2, Cuisine: "Thai", Difficulty: meal.DifficultyLow}

		Convey("Then the score should be price times cuisine length minus the modifier", func() {
			So(scoring.Score(m1), ShouldEqual, 88.0)
			So(scoring.Score(m2), ShouldEqual, 134.0)
			So(scoring.Score(m3), ShouldEqual, 5.0)
		})

		Convey("When the cuisine contains multi-byte characters", func() {
			m := meal.Meal{Price: 1, Cuisine: "Café", Difficulty: meal.DifficultyHigh}

			Convey("Then characters should be counted, not bytes", func() {
				So(scoring.Score(m), ShouldEqual, 3.0)
			})
		})
	})
}

func TestDelta(t *testing.T) {
	Convey("Given two scores", t, func() {
		Convey("Then the gap should be scaled by 100 and clamped", func() {
			So(scoring.Delta(88, 134), ShouldAlmostEqual, 0.46)
			So(scoring.Delta(134, 88), ShouldAlmostEqual, 0.46)
			So(scoring.Delta(5, 5), ShouldEqual, 0.0)
			So(scoring.Delta(0, 1000), ShouldEqual, 1.0)
		})
	})
}

func TestDecide(t *testing.T) {
	Convey("Given a score gap of 0.46", t, func() {
		Convey("When the draw is below delta", func() {
			Convey("Then the higher-scoring side should win", func() {
				So(scoring.Decide(88, 134, 0.1), ShouldEqual, scoring.Second)
				So(scoring.Decide(134, 88, 0.45), ShouldEqual, scoring.First)
			})
		})

		Convey("When the draw is at or above delta", func() {
			Convey("Then the lower-scoring side should win", func() {
				So(scoring.Decide(88, 134, 0.46), ShouldEqual, scoring.First)
				So(scoring.Decide(134, 88, 0.99), ShouldEqual, scoring.Second)
			})
		})
	})

	Convey("Given a gap of at least 100", t, func() {
		Convey("Then the higher-scoring side should always win", func() {
			So(scoring.Decide(0, 500, 0), ShouldEqual, scoring.Second)
			So(scoring.Decide(0, 500, 0.999), ShouldEqual, scoring.Second)
		})
	})

	Convey("Given equal scores", t, func() {
		Convey("Then the second side should win for every draw", func() {
			for _, draw := range []float64{0, 0.25, 0.5, 0.999} {
				So(scoring.Decide(42, 42, draw), ShouldEqual, scoring.Second)
			}
		})
	})

	Convey("Given a side", t, func() {
		Convey("Then Other should flip it", func() {
			So(scoring.First.Other(), ShouldEqual, scoring.Second)
			So(scoring.Second.Other(), ShouldEqual, scoring.First)
		})
	})
}
