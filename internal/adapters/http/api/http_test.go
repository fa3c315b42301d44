package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/okian/scout/internal/adapters/http/api"
	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const squad = `ID,Name,Club,Nation,Pace,Shooting,Passing,Dribbling,Defending,Physical
1,Alpha,Lions,France,90,80,70,85,40,75
2,Beta,Lions,Spain,88,79,71,84,42,74
3,Gamma,Bears,France,50,40,60,55,85,90
4,Delta,Wolves,Brazil,91,82,68,86,38,76
5,Epsilon,Bears,Spain,,60,60,60,60,60
`

const reserves = `ID,Name,Club,Nation,Pace,Shooting,Passing,Dribbling,Defending,Physical
10,Zeta,Hawks,Italy,70,70,70,70,70,70
11,Eta,Hawks,Italy,71,70,70,70,70,70
`

func writeCSV(t *testing.T, body string) string {
	return writeCSVIn(t, t.TempDir(), "players.csv", body)
}

func writeCSVIn(t *testing.T, dir, name, body string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newHandler(t *testing.T, svc *service.Service, opts ...api.Option) http.Handler {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	So(svc.Start(ctx), ShouldBeNil)
	return api.NewServer(svc, opts...).Handler(context.Background())
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func ids(rows []map[string]any) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = int(row["id"].(float64))
	}
	return out
}

func TestServer_Players(t *testing.T) {
	Convey("Given a server over a loaded service", t, func() {
		svc := service.New(service.WithCSVPath(writeCSV(t, squad)), service.WithLimits(2, 3))
		defer svc.Stop()
		h := newHandler(t, svc)

		Convey("When the metrics endpoint is scraped", func() {
			w := do(h, http.MethodGet, "/healthz", "")

			Convey("Then the custom registry is exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "scout_players_population_size")
			})
		})

		Convey("When stats are requested", func() {
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then they describe the snapshot", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var stats service.Stats
				decode(w, &stats)
				So(stats.Started, ShouldBeTrue)
				So(stats.Players, ShouldEqual, 5)
			})
		})

		Convey("When listing players", func() {
			w := do(h, http.MethodGet, "/api/players", "")

			Convey("Then the page is capped and the total is in a header", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("X-Total-Count"), ShouldEqual, "5")
				var rows []map[string]any
				decode(w, &rows)
				So(ids(rows), ShouldResemble, []int{1, 2, 3})
			})
		})

		Convey("When searching players", func() {
			w := do(h, http.MethodGet, "/api/players?q=lions", "")

			Convey("Then only matches are listed", func() {
				var rows []map[string]any
				decode(w, &rows)
				So(ids(rows), ShouldResemble, []int{1, 2})
			})
		})

		Convey("When the listing limit is not a number", func() {
			w := do(h, http.MethodGet, "/api/players?limit=many", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When fetching one player", func() {
			w := do(h, http.MethodGet, "/api/players/3", "")

			Convey("Then the row is flat and missing values are null", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var row map[string]any
				decode(w, &row)
				So(row["name"], ShouldEqual, "Gamma")
				So(row["pace"], ShouldEqual, 50.0)
				v, present := row["sprint_speed"]
				So(present, ShouldBeTrue)
				So(v, ShouldBeNil)
			})
		})

		Convey("When fetching an unknown player", func() {
			w := do(h, http.MethodGet, "/api/players/99", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, "not_found")
			})
		})

		Convey("When the player id is not an integer", func() {
			w := do(h, http.MethodGet, "/api/players/abc", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When asking for the top players", func() {
			w := do(h, http.MethodGet, "/api/players/top?n=2", "")

			Convey("Then they are ranked with a score", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []map[string]any
				decode(w, &rows)
				So(ids(rows), ShouldResemble, []int{4, 1})
				So(rows[0]["score"], ShouldAlmostEqual, 441.0/6, 1e-9)
			})
		})
	})
}

func TestServer_Similar(t *testing.T) {
	Convey("Given a server over a loaded service", t, func() {
		svc := service.New(service.WithCSVPath(writeCSV(t, squad)), service.WithLimits(2, 3))
		defer svc.Stop()
		h := newHandler(t, svc)

		Convey("When asking for similar players with the defaults", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar", "")

			Convey("Then the closest come first with their distance", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []map[string]any
				decode(w, &rows)
				So(ids(rows), ShouldResemble, []int{2, 4})
				So(rows[0]["distance"].(float64), ShouldBeLessThanOrEqualTo, rows[1]["distance"].(float64))
			})
		})

		Convey("When weighting a single attribute", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar?attributes=pace&weights=2&limit=3", "")

			Convey("Then the weighted distance is reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []map[string]any
				decode(w, &rows)
				So(ids(rows), ShouldResemble, []int{4, 2, 3})
				So(rows[0]["distance"], ShouldAlmostEqual, 1.4142135623730951, 1e-9)
			})
		})

		Convey("When an attribute is unknown", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar?attributes=pace,flair", "")

			Convey("Then the error names it", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, "invalid_attribute")
				So(body.Message, ShouldEqual, "unknown attribute: flair")
			})
		})

		Convey("When the attribute list is blank", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar?attributes=", "")

			Convey("Then the empty set is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, "empty_attribute_set")
			})
		})

		Convey("When weights do not match the attributes", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar?weights=1", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When a weight is not a number", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar?attributes=pace&weights=heavy", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit is negative", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar?limit=-1", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the reference player is unknown", func() {
			w := do(h, http.MethodGet, "/api/players/42/similar", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When comparing two players", func() {
			w := do(h, http.MethodGet, "/api/players/1/compare/3?attributes=pace,defending", "")

			Convey("Then each attribute is lined up", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					A          map[string]any `json:"a"`
					B          map[string]any `json:"b"`
					Attributes []struct {
						Name string   `json:"name"`
						Diff *float64 `json:"diff"`
					} `json:"attributes"`
				}
				decode(w, &body)
				So(body.A["name"], ShouldEqual, "Alpha")
				So(body.B["name"], ShouldEqual, "Gamma")
				So(len(body.Attributes), ShouldEqual, 2)
				So(*body.Attributes[0].Diff, ShouldEqual, -40.0)
				So(*body.Attributes[1].Diff, ShouldEqual, 45.0)
			})
		})
	})
}

func TestServer_Imports(t *testing.T) {
	Convey("Given a server over a loaded service", t, func() {
		importDir := t.TempDir()
		svc := service.New(
			service.WithCSVPath(writeCSV(t, squad)),
			service.WithImportDir(importDir),
		)
		defer svc.Stop()
		h := newHandler(t, svc)

		Convey("When a background import is submitted", func() {
			writeCSVIn(t, importDir, "reserves.csv", reserves)
			w := do(h, http.MethodPost, "/api/import", `{"path":"reserves.csv"}`)
			So(w.Code, ShouldEqual, http.StatusAccepted)
			var job struct {
				ID    string `json:"id"`
				State string `json:"state"`
			}
			decode(w, &job)

			Convey("Then the job can be followed to completion", func() {
				So(job.State, ShouldEqual, "queued")
				So(w.Header().Get("Location"), ShouldEqual, "/api/import/"+job.ID)

				var status struct {
					State    string `json:"state"`
					Imported int    `json:"imported"`
				}
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					decode(do(h, http.MethodGet, "/api/import/"+job.ID, ""), &status)
					if status.State == "succeeded" {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(status.State, ShouldEqual, "succeeded")
				So(status.Imported, ShouldEqual, 2)
			})
		})

		Convey("When an import names a file outside the import directory", func() {
			outside := do(h, http.MethodPost, "/api/import", `{"path":"/etc/passwd"}`)
			up := do(h, http.MethodPost, "/api/import", `{"path":"../players.csv"}`)

			Convey("Then both are bad requests and nothing is queued", func() {
				So(outside.Code, ShouldEqual, http.StatusBadRequest)
				So(up.Code, ShouldEqual, http.StatusBadRequest)
				var body errorBody
				decode(outside, &body)
				So(body.Code, ShouldEqual, "bad_request")
				So(body.Message, ShouldContainSubstring, "/etc/passwd")
				So(svc.GetStats().Players, ShouldEqual, 5)
			})
		})

		Convey("When an import names a file with no rows", func() {
			writeCSVIn(t, importDir, "empty.csv", "ID,Name,Club,Nation,Pace,Shooting,Passing,Dribbling,Defending,Physical\n")
			w := do(h, http.MethodPost, "/api/import", `{"path":"empty.csv"}`)
			var job struct {
				ID string `json:"id"`
			}
			decode(w, &job)

			Convey("Then the job fails and queries keep being served", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var status struct {
					State string `json:"state"`
					Error string `json:"error"`
				}
				deadline := time.Now().Add(5 * time.Second)
				for time.Now().Before(deadline) {
					decode(do(h, http.MethodGet, "/api/import/"+job.ID, ""), &status)
					if status.State == "failed" {
						break
					}
					time.Sleep(10 * time.Millisecond)
				}
				So(status.State, ShouldEqual, "failed")
				So(status.Error, ShouldContainSubstring, "no players")
				So(do(h, http.MethodGet, "/api/players/1", "").Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the import body is malformed", func() {
			w := do(h, http.MethodPost, "/api/import", `{"path":`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When an unknown job is requested", func() {
			w := do(h, http.MethodGet, "/api/import/unknown", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the configured dataset is reloaded synchronously", func() {
			w := do(h, http.MethodGet, "/api/import-data", "")

			Convey("Then the import is reported", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					Message    string `json:"message"`
					Generation uint64 `json:"generation"`
				}
				decode(w, &body)
				So(body.Message, ShouldEqual, "Imported 5 players successfully")
				So(body.Generation, ShouldEqual, uint64(2))
			})
		})
	})
}

func TestServer_Middleware(t *testing.T) {
	Convey("Given a server over an empty service", t, func() {
		svc := service.New(service.WithImportOnStart(false))
		defer svc.Stop()
		h := newHandler(t, svc, api.WithRateLimit(2, time.Minute), api.WithCORSOrigins([]string{"*"}))

		Convey("When no data has been loaded", func() {
			w := do(h, http.MethodGet, "/api/players/1/similar", "")

			Convey("Then the data is reported unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, "data_unavailable")
			})
		})

		Convey("When a request carries an id", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			req.Header.Set("X-Request-ID", "abc-123")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is echoed back", func() {
				So(w.Header().Get("X-Request-ID"), ShouldEqual, "abc-123")
			})
		})

		Convey("When a request carries no id", func() {
			w := do(h, http.MethodGet, "/stats", "")

			Convey("Then one is assigned", func() {
				So(len(w.Header().Get("X-Request-ID")), ShouldEqual, 36)
			})
		})

		Convey("When a cross-origin request arrives", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", http.NoBody)
			req.Header.Set("Origin", "https://scouting.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			Convey("Then it is allowed", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})

		Convey("When a client exceeds the rate limit", func() {
			codes := make([]int, 3)
			for i := range codes {
				codes[i] = do(h, http.MethodGet, "/stats", "").Code
			}

			Convey("Then the extra request is refused", func() {
				So(codes, ShouldResemble, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests})
			})
		})

		Convey("When a path is unknown", func() {
			w := do(h, http.MethodGet, "/nowhere", "")

			Convey("Then the router answers not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}
