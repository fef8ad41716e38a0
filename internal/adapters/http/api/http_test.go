package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/keido/slouchd/internal/adapters/command"
	"github.com/keido/slouchd/internal/adapters/http/api"
	service "github.com/keido/slouchd/internal/app"
	"github.com/keido/slouchd/internal/domain/model"
)

// fakeDeps implements api.Dependencies for handler tests.
type fakeDeps struct {
	status      model.Status
	episodes    []model.Episode
	episodesErr error
	frame       []byte
	frameErr    error
	commands    []command.Command
	reject      bool
}

func (f *fakeDeps) Status(context.Context) model.Status { return f.status }

func (f *fakeDeps) Episodes(_ context.Context, limit int) ([]model.Episode, error) {
	if f.episodesErr != nil {
		return nil, f.episodesErr
	}
	if limit < len(f.episodes) {
		return f.episodes[:limit], nil
	}
	return f.episodes, nil
}

func (f *fakeDeps) DebugFrame(context.Context) ([]byte, error) {
	return f.frame, f.frameErr
}

func (f *fakeDeps) Command(_ context.Context, c command.Command) bool {
	if f.reject {
		return false
	}
	f.commands = append(f.commands, c)
	return true
}

func newMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func TestStatusEndpoint(t *testing.T) {
	Convey("Given the status endpoint", t, func() {
		deps := &fakeDeps{
			status: model.Status{
				Report: model.PostureReport{
					Alert:       true,
					Counter:     18,
					Delta:       14.5,
					HasDelta:    true,
					Baseline:    210,
					HasBaseline: true,
				},
				Alpha:     180,
				EpisodeID: "ep-1",
				Frames:    42,
				DebugView: true,
			},
		}
		mux := newMux(deps)

		Convey("When GET /status", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

			Convey("Then the snapshot is returned as JSON", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var body map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["alert"], ShouldEqual, true)
				So(body["counter"], ShouldEqual, 18)
				So(body["delta"], ShouldEqual, 14.5)
				So(body["baseline"], ShouldEqual, 210)
				So(body["alpha"], ShouldEqual, 180)
				So(body["episode_id"], ShouldEqual, "ep-1")
			})
		})

		Convey("When the baseline has not latched yet", func() {
			deps.status = model.Status{Report: model.PostureReport{}}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

			Convey("Then baseline and delta are null", func() {
				var body map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["baseline"], ShouldBeNil)
				So(body["delta"], ShouldBeNil)
			})
		})

		Convey("When POST /status", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))

			Convey("Then it is rejected", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestEpisodesEndpoint(t *testing.T) {
	Convey("Given stored episodes", t, func() {
		started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		ended := started.Add(40 * time.Second)
		deps := &fakeDeps{
			episodes: []model.Episode{
				{ID: "ep-2", StartedAt: started.Add(time.Minute), PeakDelta: 22, Ticks: 80},
				{ID: "ep-1", StartedAt: started, EndedAt: ended, Ended: true, PeakDelta: 13.5, Ticks: 31},
			},
		}
		mux := newMux(deps)

		Convey("When GET /episodes", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/episodes", nil))

			Convey("Then all episodes are returned, open ones with null ended_at", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var body []map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body, ShouldHaveLength, 2)
				So(body[0]["id"], ShouldEqual, "ep-2")
				So(body[0]["ended_at"], ShouldBeNil)
				So(body[1]["id"], ShouldEqual, "ep-1")
				So(body[1]["ended_at"], ShouldEqual, ended.Format(time.RFC3339))
			})
		})

		Convey("When GET /episodes with a limit", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/episodes?limit=1", nil))

			var body []map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
			So(body, ShouldHaveLength, 1)
		})

		Convey("When the limit is invalid", func() {
			for _, q := range []string{"limit=0", "limit=-3", "limit=abc", "limit=101"} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/episodes?"+q, nil))
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the limit is not a number", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/episodes?limit=abc", nil))

			Convey("Then the error carries the parse cause", func() {
				var body map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "bad_request")
				So(body["message"], ShouldContainSubstring, "bad request")
				So(body["message"], ShouldContainSubstring, "invalid syntax")
			})
		})
	})
}

func TestControlEndpoints(t *testing.T) {
	Convey("Given the control endpoints", t, func() {
		deps := &fakeDeps{}
		mux := newMux(deps)

		Convey("When POST /reset", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reset", nil))

			Convey("Then the command is accepted", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.commands, ShouldResemble, []command.Command{command.Reset})

				var body map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["status"], ShouldEqual, "accepted")
				So(body["command"], ShouldEqual, "reset")
			})
		})

		Convey("When POST /quit and POST /debugview", func() {
			for path, want := range map[string]command.Command{
				"/quit":      command.Quit,
				"/debugview": command.ToggleDebug,
			} {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.commands, ShouldContain, want)
			}
		})

		Convey("When the queue applies backpressure", func() {
			deps.reject = true
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reset", nil))

			Convey("Then the request is rejected with 429", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)

				var body map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &body), ShouldBeNil)
				So(body["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When GET /reset", func() {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reset", nil))
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDebugFrameEndpoint(t *testing.T) {
	Convey("Given the debug frame endpoint", t, func() {
		Convey("When a frame is available", func() {
			deps := &fakeDeps{frame: []byte{0x89, 'P', 'N', 'G'}}
			mux := newMux(deps)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/frame", nil))

			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "image/png")
			So(rec.Body.Bytes(), ShouldResemble, []byte{0x89, 'P', 'N', 'G'})
		})

		Convey("When the debug view is disabled", func() {
			deps := &fakeDeps{frameErr: service.ErrDebugDisabled}
			mux := newMux(deps)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/frame", nil))

			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When no frame has been captured yet", func() {
			deps := &fakeDeps{frameErr: service.ErrNoFrame}
			mux := newMux(deps)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/frame", nil))

			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
