package meal_test

import (
	"errors"
	"math"
	"testing"

	"github.com/nicolelin19/mealmax/internal/domain/meal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseDifficulty(t *testing.T) {
	Convey("Given difficulty strings", t, func() {
		Convey("When they are known in any case", func() {
			low, errLow := meal.ParseDifficulty("low")
			med, errMed := meal.ParseDifficulty(" Med ")
			high, errHigh := meal.ParseDifficulty("HIGH")

			Convey("Then they should parse", func() {
				So(errLow, ShouldBeNil)
				So(errMed, ShouldBeNil)
				So(errHigh, ShouldBeNil)
				So(low, ShouldEqual, meal.DifficultyLow)
				So(med, ShouldEqual, meal.DifficultyMed)
				So(high, ShouldEqual, meal.DifficultyHigh)
			})
		})

		Convey("When the value is unknown", func() {
			_, err := meal.ParseDifficulty("EXTREME")

			Convey("Then an invalid meal error should be returned", func() {
				So(errors.Is(err, meal.ErrInvalidMeal), ShouldBeTrue)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	valid := meal.Meal{Name: "Spaghetti", Cuisine: "Italian", Price: 12.5, Difficulty: meal.DifficultyMed}

	Convey("Given a meal", t, func() {
		Convey("When every attribute is set", func() {
			Convey("Then it should validate", func() {
				So(valid.Validate(), ShouldBeNil)
			})
		})

		Convey("When an attribute is wrong", func() {
			cases := []struct {
				name   string
				mutate func(m *meal.Meal)
			}{
				{"empty name", func(m *meal.Meal) { m.Name = "  " }},
				{"empty cuisine", func(m *meal.Meal) { m.Cuisine = "" }},
				{"zero price", func(m *meal.Meal) { m.Price = 0 }},
				{"negative price", func(m *meal.Meal) { m.Price = -3 }},
				{"NaN price", func(m *meal.Meal) { m.Price = math.NaN() }},
				{"bad difficulty", func(m *meal.Meal) { m.Difficulty = "EASY" }},
			}

			for _, tc := range cases {
				Convey("Then "+tc.name+" should be rejected", func() {
					m := valid
					tc.mutate(&m)
					So(errors.Is(m.Validate(), meal.ErrInvalidMeal), ShouldBeTrue)
				})
			}
		})
	})
}

func TestWinRatio(t *testing.T) {
	Convey("Given battle records", t, func() {
		Convey("Then the ratio should be wins over battles fought", func() {
			So(meal.Meal{}.WinRatio(), ShouldEqual, 0.0)
			So(meal.Meal{Wins: 3, Losses: 1}.WinRatio(), ShouldEqual, 0.75)
			So(meal.Meal{Losses: 4}.WinRatio(), ShouldEqual, 0.0)
		})
	})
}

func TestErrMealDeleted(t *testing.T) {
	Convey("Given the deleted sentinel", t, func() {
		Convey("Then it should also match not found", func() {
			So(errors.Is(meal.ErrMealDeleted, meal.ErrMealNotFound), ShouldBeTrue)
			So(errors.Is(meal.ErrMealNotFound, meal.ErrMealDeleted), ShouldBeFalse)
		})
	})
}
