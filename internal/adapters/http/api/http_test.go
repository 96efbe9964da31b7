package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/possessions/internal/adapters/http/api"
	"github.com/okian/possessions/internal/adapters/repository"
	service "github.com/okian/possessions/internal/app"
	"github.com/okian/possessions/internal/domain/model"
	"github.com/okian/possessions/internal/domain/possession"
	"github.com/okian/possessions/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeps struct {
	submitErr error
	submitted map[string][]model.Event
	stored    map[string][]possession.Summary
	jobs      map[string]types.JobStatus
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		submitted: make(map[string][]model.Event),
		stored:    make(map[string][]possession.Summary),
		jobs:      make(map[string]types.JobStatus),
	}
}

func (m *mockDeps) Submit(_ context.Context, gameID string, events []model.Event) (types.JobStatus, error) {
	if m.submitErr != nil {
		return types.JobStatus{}, m.submitErr
	}
	m.submitted[gameID] = events
	return types.JobStatus{JobID: "job-" + gameID, GameID: gameID, State: types.JobQueued}, nil
}

func (m *mockDeps) Possessions(_ context.Context, gameID string) ([]possession.Summary, error) {
	ps, ok := m.stored[gameID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ps, nil
}

func (m *mockDeps) Timeline(_ context.Context, gameID string) ([]possession.TimelineRow, error) {
	if _, ok := m.stored[gameID]; !ok {
		return nil, fmt.Errorf("reading timeline: %w", repository.ErrNotFound)
	}
	return []possession.TimelineRow{{GameID: gameID, Seq: 1}}, nil
}

func (m *mockDeps) Job(_ context.Context, jobID string) (types.JobStatus, error) {
	st, ok := m.jobs[jobID]
	if !ok {
		return types.JobStatus{}, service.ErrJobNotFound
	}
	return st, nil
}

func (m *mockDeps) GetStats(context.Context) types.Stats {
	return types.Stats{Started: true, Workers: 4, QueueSize: 100}
}

func newTestServer(deps api.Dependencies, opts ...api.Option) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, opts...).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

const twoEvents = `[{"period":1,"game_clock":"12:00","msg_type":12},{"period":1,"game_clock":"11:40","msg_type":1,"actor1":{"player_id":7,"team_id":1610612747}}]`

func post(url, body string) *http.Response {
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	So(err, ShouldBeNil)
	return resp
}

func get(url string) *http.Response {
	resp, err := http.Get(url)
	So(err, ShouldBeNil)
	return resp
}

func decodeError(resp *http.Response) map[string]string {
	defer resp.Body.Close()
	var out map[string]string
	So(json.NewDecoder(resp.Body).Decode(&out), ShouldBeNil)
	return out
}

func TestSubmitGame(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := newMockDeps()
		srv := newTestServer(deps)
		defer srv.Close()
		url := srv.URL + "/games/0022000001/events"

		Convey("When a valid game is posted", func() {
			resp := post(url, twoEvents)
			defer resp.Body.Close()

			Convey("Then it is accepted with a job id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["job_id"], ShouldEqual, "job-0022000001")
				So(body["status"], ShouldEqual, "queued")
				So(len(deps.submitted["0022000001"]), ShouldEqual, 2)
			})
		})

		Convey("When the game id has lost its leading zeros", func() {
			resp := post(srv.URL+"/games/22000001/events", twoEvents)
			defer resp.Body.Close()

			Convey("Then the game is submitted under its padded id", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusAccepted)
				So(len(deps.submitted["0022000001"]), ShouldEqual, 2)
				So(deps.submitted, ShouldNotContainKey, "22000001")
			})
		})

		Convey("When the body is not an events array", func() {
			resp := post(url, `{"events":[]}`)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(decodeError(resp)["code"], ShouldEqual, "bad_request")
		})

		Convey("When the game is already in flight", func() {
			deps.submitErr = fmt.Errorf("%w: 0022000001", service.ErrDuplicate)
			resp := post(url, twoEvents)
			So(resp.StatusCode, ShouldEqual, http.StatusConflict)
			So(decodeError(resp)["code"], ShouldEqual, "duplicate")
		})

		Convey("When the service is saturated", func() {
			deps.submitErr = service.ErrBackpressure
			resp := post(url, twoEvents)
			So(resp.StatusCode, ShouldEqual, http.StatusTooManyRequests)
			So(decodeError(resp)["code"], ShouldEqual, "backpressure")
		})

		Convey("When the service is stopping", func() {
			deps.submitErr = service.ErrNotStarted
			resp := post(url, twoEvents)
			So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
			resp.Body.Close()
		})

		Convey("When the wrong method is used", func() {
			resp := get(url)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})

	Convey("Given a server with a small event cap", t, func() {
		srv := newTestServer(newMockDeps(), api.WithMaxEvents(1))
		defer srv.Close()

		resp := post(srv.URL+"/games/g/events", twoEvents)
		So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		resp.Body.Close()
	})

	Convey("Given a server with a small body cap", t, func() {
		srv := newTestServer(newMockDeps(), api.WithMaxBodyBytes(16))
		defer srv.Close()

		resp := post(srv.URL+"/games/g/events", twoEvents)
		So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		resp.Body.Close()
	})
}

func TestReadGame(t *testing.T) {
	Convey("Given a server with one stored game", t, func() {
		deps := newMockDeps()
		deps.stored["0022000001"] = []possession.Summary{{GameID: "0022000001", PossessionID: 1, Team2Points: 3}}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When its possessions are requested", func() {
			resp := get(srv.URL + "/games/0022000001/possessions")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var ps []possession.Summary
			So(json.NewDecoder(resp.Body).Decode(&ps), ShouldBeNil)
			So(len(ps), ShouldEqual, 1)
			So(ps[0].Team2Points, ShouldEqual, 3)
		})

		Convey("When it is requested without leading zeros", func() {
			resp := get(srv.URL + "/games/22000001/possessions")
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			resp = get(srv.URL + "/games/22000001/timeline")
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When its timeline is requested", func() {
			resp := get(srv.URL + "/games/0022000001/timeline")
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})

		Convey("When an unknown game is requested", func() {
			resp := get(srv.URL + "/games/0029999999/possessions")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			So(decodeError(resp)["code"], ShouldEqual, "not_found")

			resp = get(srv.URL + "/games/0029999999/timeline")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			resp.Body.Close()
		})
	})
}

func TestJobsAndStats(t *testing.T) {
	Convey("Given a server that knows one job", t, func() {
		deps := newMockDeps()
		finished := time.Date(2021, 1, 1, 0, 0, 1, 0, time.UTC)
		deps.jobs["job-1"] = types.JobStatus{JobID: "job-1", GameID: "g", State: types.JobFailed, Reason: "lineup", FinishedAt: &finished}
		srv := newTestServer(deps)
		defer srv.Close()

		Convey("When the job is requested", func() {
			resp := get(srv.URL + "/jobs/job-1")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var st types.JobStatus
			So(json.NewDecoder(resp.Body).Decode(&st), ShouldBeNil)
			So(st.State, ShouldEqual, types.JobFailed)
			So(st.Reason, ShouldEqual, "lineup")
		})

		Convey("When an unknown job is requested", func() {
			resp := get(srv.URL + "/jobs/nope")
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})

		Convey("When stats are requested", func() {
			resp := get(srv.URL + "/stats")
			defer resp.Body.Close()
			var stats types.Stats
			So(json.NewDecoder(resp.Body).Decode(&stats), ShouldBeNil)
			So(stats.Workers, ShouldEqual, 4)
		})

		Convey("When health is requested", func() {
			// Prime a request so the HTTP counters have samples.
			get(srv.URL + "/stats").Body.Close()
			resp := get(srv.URL + "/healthz")
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			So(string(body), ShouldContainSubstring, "pbp_possessions_http_requests_total")
		})
	})
}
