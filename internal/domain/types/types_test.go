package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/teamforge/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJobStatus(t *testing.T) {
	Convey("Given the job status lifecycle", t, func() {
		Convey("When checking non-terminal states", func() {
			So(types.StatusQueued.Terminal(), ShouldBeFalse)
			So(types.StatusRunning.Terminal(), ShouldBeFalse)
		})

		Convey("When checking terminal states", func() {
			So(types.StatusCompleted.Terminal(), ShouldBeTrue)
			So(types.StatusInfeasible.Terminal(), ShouldBeTrue)
			So(types.StatusInvalid.Terminal(), ShouldBeTrue)
		})

		Convey("When checking an unknown state", func() {
			So(types.JobStatus("mystery").Terminal(), ShouldBeFalse)
		})

		Convey("When serializing a status", func() {
			data, err := json.Marshal(types.StatusInfeasible)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `"infeasible"`)
		})
	})
}

func TestTeam(t *testing.T) {
	Convey("Given a Team read shape", t, func() {
		Convey("When creating a team", func() {
			team := types.Team{
				Index:    2,
				Members:  []string{"p-1", "p-2", "p-3"},
				LeaderID: "p-2",
			}

			Convey("Then it should hold the assigned values", func() {
				So(team.Index, ShouldEqual, 2)
				So(team.Members, ShouldHaveLength, 3)
				So(team.LeaderID, ShouldEqual, "p-2")
			})

			Convey("And the leader should be one of the members", func() {
				So(team.LeaderID, ShouldBeIn, team.Members)
			})
		})

		Convey("When creating a zero-value team", func() {
			team := types.Team{}

			Convey("Then it should have empty defaults", func() {
				So(team.Index, ShouldEqual, 0)
				So(team.Members, ShouldBeNil)
				So(team.LeaderID, ShouldEqual, "")
			})
		})
	})
}

func TestJobView(t *testing.T) {
	Convey("Given a JobView read shape", t, func() {
		Convey("When creating a queued view", func() {
			submitted := time.Now()
			view := types.JobView{
				ID:           "job-123",
				Status:       types.StatusQueued,
				Competition:  "spring-hackathon",
				Kind:         "Hackathon",
				TeamSize:     4,
				Participants: 40,
				SubmittedAt:  submitted,
			}

			Convey("Then it should hold the assigned values", func() {
				So(view.ID, ShouldEqual, "job-123")
				So(view.Status, ShouldEqual, types.StatusQueued)
				So(view.Competition, ShouldEqual, "spring-hackathon")
				So(view.TeamSize, ShouldEqual, 4)
				So(view.Participants, ShouldEqual, 40)
				So(view.SubmittedAt, ShouldEqual, submitted)
			})

			Convey("And the optional fields should be empty", func() {
				So(view.StartedAt, ShouldBeNil)
				So(view.FinishedAt, ShouldBeNil)
				So(view.Error, ShouldEqual, "")
				So(view.Result, ShouldBeNil)
			})

			Convey("And JSON should omit the empty optional fields", func() {
				data, err := json.Marshal(view)
				So(err, ShouldBeNil)
				So(string(data), ShouldNotContainSubstring, "started_at")
				So(string(data), ShouldNotContainSubstring, "error")
				So(string(data), ShouldNotContainSubstring, "result")
			})
		})

		Convey("When creating a completed view with a result", func() {
			view := types.JobView{
				ID:     "job-456",
				Status: types.StatusCompleted,
				Result: &types.FormationView{
					Teams: []types.Team{
						{Index: 0, Members: []string{"a", "b"}, LeaderID: "a"},
						{Index: 1, Members: []string{"c", "d"}, LeaderID: "d"},
					},
					NumTeams:    2,
					Cost:        0.125,
					InitialCost: 3.5,
					Iterations:  4200,
					Seed:        42,
				},
			}

			Convey("Then the result should round-trip through JSON", func() {
				data, err := json.Marshal(view)
				So(err, ShouldBeNil)

				var decoded types.JobView
				So(json.Unmarshal(data, &decoded), ShouldBeNil)
				So(decoded.Status, ShouldEqual, types.StatusCompleted)
				So(decoded.Result, ShouldNotBeNil)
				So(decoded.Result.NumTeams, ShouldEqual, 2)
				So(decoded.Result.Teams[1].LeaderID, ShouldEqual, "d")
				So(decoded.Result.Cost, ShouldEqual, 0.125)
				So(decoded.Result.Seed, ShouldEqual, 42)
			})
		})

		Convey("When creating a failed view", func() {
			view := types.JobView{
				ID:     "job-789",
				Status: types.StatusInfeasible,
				Error:  "required role ml cannot be covered",
			}

			Convey("Then the error should be carried and the result absent", func() {
				So(view.Status.Terminal(), ShouldBeTrue)
				So(view.Error, ShouldContainSubstring, "ml")
				So(view.Result, ShouldBeNil)
			})
		})
	})
}

func TestTeamSummary(t *testing.T) {
	Convey("Given a TeamSummary read shape", t, func() {
		sum := types.TeamSummary{
			Index: 1,
			Size:  3,
			DimensionMeans: map[string]float64{
				"hackathon_score":  7.2,
				"experience_level": 5.1,
			},
			AvgComposite:   0.61,
			CoveredRoles:   map[string]int{"backend": 2, "design": 1},
			LeaderAptitude: 6.8,
		}

		Convey("Then it should hold the aggregates", func() {
			So(sum.Size, ShouldEqual, 3)
			So(sum.DimensionMeans["hackathon_score"], ShouldEqual, 7.2)
			So(sum.CoveredRoles["backend"], ShouldEqual, 2)
			So(sum.LeaderAptitude, ShouldEqual, 6.8)
		})

		Convey("Then empty covered roles should be omitted from JSON", func() {
			sum.CoveredRoles = nil
			data, err := json.Marshal(sum)
			So(err, ShouldBeNil)
			So(string(data), ShouldNotContainSubstring, "covered_roles")
		})
	})
}
