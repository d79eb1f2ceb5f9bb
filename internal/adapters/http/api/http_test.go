package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/teamforge/internal/adapters/http/api"
	repository "github.com/okian/teamforge/internal/adapters/repository"
	"github.com/okian/teamforge/internal/domain/model"
	"github.com/okian/teamforge/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeduper struct {
	seen map[string]bool
}

func (m *mockDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeduper) Unrecord(ctx context.Context, id string) {
	if m.seen != nil {
		delete(m.seen, id)
	}
}

func (m *mockDeduper) Size() int64 {
	return int64(len(m.seen))
}

type mockDependencies struct {
	dedupe *mockDeduper

	submitSuccess bool
	submitted     []model.FormationJob

	jobs    map[string]types.JobView
	recent  []types.JobView
	jobErr  error
	listErr error
}

func (m *mockDependencies) SeenAndRecord(ctx context.Context, id string) bool {
	return m.dedupe.SeenAndRecord(ctx, id)
}

func (m *mockDependencies) Unrecord(ctx context.Context, id string) {
	m.dedupe.Unrecord(ctx, id)
}

func (m *mockDependencies) Size() int64 {
	return m.dedupe.Size()
}

func (m *mockDependencies) Submit(ctx context.Context, job model.FormationJob) (string, bool) {
	if !m.submitSuccess {
		return "", false
	}
	id := fmt.Sprintf("job-%d", len(m.submitted)+1)
	m.submitted = append(m.submitted, job)
	return id, true
}

func (m *mockDependencies) Job(ctx context.Context, id string) (types.JobView, error) {
	if m.jobErr != nil {
		return types.JobView{}, m.jobErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return types.JobView{}, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return job, nil
}

func (m *mockDependencies) Recent(ctx context.Context, n int) ([]types.JobView, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if n > len(m.recent) {
		return m.recent, nil
	}
	return m.recent[:n], nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func submitBody(requestID string) string {
	return fmt.Sprintf(`{
		"request_id": %q,
		"competition": {"name": "spring-hack", "kind": "AI Hackathon", "team_size": 4},
		"roster": [
			{"id": "p1", "name": "Ada", "scores": {"hackathon_score": 8, "experience_level": 6}, "roles": ["backend"], "leadership": 7},
			{"id": "p2", "name": "Lin", "scores": {"hackathon_score": 5}, "roles": ["frontend"], "leadership": 3},
			{"id": "p3", "name": "Sam", "scores": {"hackathon_score": 6}, "roles": ["design"], "leadership": 4},
			{"id": "p4", "name": "Kim", "scores": {"hackathon_score": 7}, "roles": ["backend"], "leadership": 5}
		],
		"seed": 7
	}`, requestID)
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{
			dedupe:        &mockDeduper{},
			submitSuccess: true,
		}
		statsProvider := &mockStatsProvider{stats: map[string]interface{}{"jobs": 0}}
		server := api.NewServer(deps, statsProvider, 100)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("Then all expected routes should be registered", func() {
				So(mux, ShouldNotBeNil)
			})

			Convey("And health endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/healthz", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And stats endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/stats", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestSubmitFormation(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{
			dedupe:        &mockDeduper{},
			submitSuccess: true,
		}
		server := api.NewServer(deps, &mockStatsProvider{}, 100)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("When submitting a valid formation request", func() {
			req := httptest.NewRequest("POST", "/formations", strings.NewReader(submitBody("req-1")))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should be accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)

				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
					JobID     string `json:"job_id"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.Duplicate, ShouldBeFalse)
				So(ack.JobID, ShouldNotBeEmpty)
			})

			Convey("And the job should carry the decoded roster", func() {
				So(len(deps.submitted), ShouldEqual, 1)
				job := deps.submitted[0]
				So(job.Spec.Name, ShouldEqual, "spring-hack")
				So(job.Spec.TeamSize, ShouldEqual, 4)
				So(len(job.Roster), ShouldEqual, 4)
				So(job.Roster[0].Scores.At(model.Hackathon), ShouldEqual, 8)
				So(job.Roster[0].Scores.At(model.Experience), ShouldEqual, 6)
				So(job.Seed, ShouldEqual, 7)
			})
		})

		Convey("When submitting the same request id twice", func() {
			first := httptest.NewRequest("POST", "/formations", strings.NewReader(submitBody("req-dup")))
			w1 := httptest.NewRecorder()
			mux.ServeHTTP(w1, first)
			So(w1.Code, ShouldEqual, http.StatusAccepted)

			second := httptest.NewRequest("POST", "/formations", strings.NewReader(submitBody("req-dup")))
			w2 := httptest.NewRecorder()
			mux.ServeHTTP(w2, second)

			Convey("Then the duplicate should be acknowledged without a new job", func() {
				So(w2.Code, ShouldEqual, http.StatusOK)

				var ack struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.Unmarshal(w2.Body.Bytes(), &ack), ShouldBeNil)
				So(ack.Duplicate, ShouldBeTrue)
				So(len(deps.submitted), ShouldEqual, 1)
			})
		})

		Convey("When the request body is malformed", func() {
			req := httptest.NewRequest("POST", "/formations", strings.NewReader("{not json"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When required fields are missing", func() {
			body := `{"request_id": "req-2", "competition": {"name": "", "team_size": 4}, "roster": [{"id": "p1"}]}`
			req := httptest.NewRequest("POST", "/formations", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the queue rejects the submission", func() {
			deps.submitSuccess = false

			req := httptest.NewRequest("POST", "/formations", strings.NewReader(submitBody("req-3")))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 429", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			})

			Convey("And the request id should be retryable", func() {
				deps.submitSuccess = true

				retry := httptest.NewRequest("POST", "/formations", strings.NewReader(submitBody("req-3")))
				w2 := httptest.NewRecorder()
				mux.ServeHTTP(w2, retry)
				So(w2.Code, ShouldEqual, http.StatusAccepted)
			})
		})
	})
}

func TestGetFormation(t *testing.T) {
	Convey("Given a server with stored jobs", t, func() {
		now := time.Now()
		deps := &mockDependencies{
			dedupe:        &mockDeduper{},
			submitSuccess: true,
			jobs: map[string]types.JobView{
				"job-1": {
					ID:          "job-1",
					Status:      types.StatusCompleted,
					Competition: "spring-hack",
					TeamSize:    4,
					SubmittedAt: now,
					Result: &types.FormationView{
						NumTeams: 2,
						Teams: []types.Team{
							{Index: 0, Members: []string{"p1", "p2"}, LeaderID: "p1"},
							{Index: 1, Members: []string{"p3", "p4"}, LeaderID: "p3"},
						},
					},
				},
			},
		}
		server := api.NewServer(deps, &mockStatsProvider{}, 100)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("When fetching an existing job", func() {
			req := httptest.NewRequest("GET", "/formations/job-1", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the job view", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var job types.JobView
				So(json.Unmarshal(w.Body.Bytes(), &job), ShouldBeNil)
				So(job.ID, ShouldEqual, "job-1")
				So(job.Status, ShouldEqual, types.StatusCompleted)
				So(job.Result, ShouldNotBeNil)
				So(job.Result.NumTeams, ShouldEqual, 2)
			})
		})

		Convey("When fetching an unknown job", func() {
			req := httptest.NewRequest("GET", "/formations/missing", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the path carries extra segments", func() {
			req := httptest.NewRequest("GET", "/formations/job-1/extra", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestListFormations(t *testing.T) {
	Convey("Given a server with recent jobs", t, func() {
		deps := &mockDependencies{
			dedupe:        &mockDeduper{},
			submitSuccess: true,
			recent: []types.JobView{
				{ID: "job-3", Status: types.StatusCompleted},
				{ID: "job-2", Status: types.StatusRunning},
				{ID: "job-1", Status: types.StatusQueued},
			},
		}
		server := api.NewServer(deps, &mockStatsProvider{}, 3)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("When listing with a valid limit", func() {
			req := httptest.NewRequest("GET", "/formations?limit=2", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return the newest jobs first", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var jobs []types.JobView
				So(json.Unmarshal(w.Body.Bytes(), &jobs), ShouldBeNil)
				So(len(jobs), ShouldEqual, 2)
				So(jobs[0].ID, ShouldEqual, "job-3")
			})
		})

		Convey("When the limit is missing or invalid", func() {
			for _, target := range []string{"/formations?limit=", "/formations?limit=0", "/formations?limit=abc"} {
				req := httptest.NewRequest("GET", target, nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the limit exceeds the configured maximum", func() {
			req := httptest.NewRequest("GET", "/formations?limit=50", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it should return 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}
