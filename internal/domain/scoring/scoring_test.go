package scoring_test

import (
	"testing"

	"github.com/okian/teamforge/internal/domain/model"
	scoring "github.com/okian/teamforge/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func participant(id string, base float64) model.Participant {
	var v model.ScoreVector
	for d := range v {
		v[d] = base
	}
	return model.Participant{ID: id, Scores: v, Roles: []string{"backend"}}
}

func TestCalculatorComposite(t *testing.T) {
	Convey("Given a roster with a clear spread in every dimension", t, func() {
		roster := []model.Participant{
			participant("p-low", 0),
			participant("p-mid", 5),
			participant("p-high", 10),
		}
		calc := scoring.NewCalculator(roster)

		Convey("When scoring the strongest participant", func() {
			score := calc.Composite(&roster[2])

			Convey("Then every dimension normalizes to 1 and the composite is the weight sum", func() {
				So(score, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})

		Convey("When scoring the weakest participant", func() {
			score := calc.Composite(&roster[0])

			Convey("Then every dimension normalizes to 0 and the composite is zero", func() {
				So(score, ShouldAlmostEqual, 0.0, 1e-9)
			})
		})

		Convey("When scoring the middle participant", func() {
			score := calc.Composite(&roster[1])

			Convey("Then the cubic exponent pulls the midpoint below linear", func() {
				So(score, ShouldAlmostEqual, 0.125, 1e-9)
			})
		})

		Convey("When scoring with a linear exponent", func() {
			linear := scoring.NewCalculator(roster, scoring.WithExponent(1))
			score := linear.Composite(&roster[1])

			Convey("Then the midpoint scores exactly half the weight sum", func() {
				So(score, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})
}

func TestCalculatorDegenerateDimensions(t *testing.T) {
	Convey("Given a roster where every participant reports identical scores", t, func() {
		roster := []model.Participant{
			participant("p-1", 7),
			participant("p-2", 7),
			participant("p-3", 7),
		}
		calc := scoring.NewCalculator(roster)

		Convey("When normalizing any value in a flat dimension", func() {
			norm := calc.Normalize(model.Hackathon, 7)

			Convey("Then the midpoint is assigned", func() {
				So(norm, ShouldEqual, 0.5)
			})
		})

		Convey("When computing all composites", func() {
			scores := calc.All(roster)

			Convey("Then everyone gets the same midpoint-derived composite", func() {
				So(len(scores), ShouldEqual, 3)
				So(scores[0], ShouldAlmostEqual, scores[1], 1e-12)
				So(scores[1], ShouldAlmostEqual, scores[2], 1e-12)
				So(scores[0], ShouldAlmostEqual, 0.125, 1e-9)
			})
		})
	})
}

func TestCalculatorWeights(t *testing.T) {
	Convey("Given the default weights", t, func() {
		weights := scoring.DefaultWeights()

		Convey("Then they sum to one", func() {
			sum := 0.0
			for _, w := range weights {
				sum += w
			}
			So(sum, ShouldAlmostEqual, 1.0, 1e-9)
		})
	})

	Convey("Given a calculator with custom weights", t, func() {
		roster := []model.Participant{
			participant("p-low", 0),
			participant("p-high", 10),
		}
		var weights model.ScoreVector
		weights[model.Hackathon] = 1.0 // everything else zero
		calc := scoring.NewCalculator(roster, scoring.WithWeights(weights), scoring.WithExponent(1))

		Convey("When scoring the strongest participant", func() {
			score := calc.Composite(&roster[1])

			Convey("Then only the weighted dimension contributes", func() {
				So(score, ShouldAlmostEqual, 1.0, 1e-9)
			})
		})
	})
}

func TestCalculatorEmptyRoster(t *testing.T) {
	Convey("Given a calculator over an empty roster", t, func() {
		calc := scoring.NewCalculator(nil)

		Convey("When normalizing any value", func() {
			norm := calc.Normalize(model.Innovation, 3)

			Convey("Then the midpoint is assigned", func() {
				So(norm, ShouldEqual, 0.5)
			})
		})
	})
}
