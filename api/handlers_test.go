package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sichgate/sichgate/internal/config"
	"github.com/sichgate/sichgate/internal/model"
	"github.com/sichgate/sichgate/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeHFBackend returns NEGATIVE with high confidence for every input.
func fakeHFBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[[{"label":"NEGATIVE","score":0.95},{"label":"POSITIVE","score":0.05}]]`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("SICHGATE_API_KEY", "")
	t.Setenv("SICHGATE_DISABLE_AUTH", "true")

	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	backend := fakeHFBackend(t)
	adapter := model.NewHFAdapter("", model.WithHFBaseURL(backend.URL))

	cfg := &config.Config{}
	cfg.Adapter.Type = "hf"
	cfg.Adapter.Model = "test-model"
	cfg.Run.Concurrency = 2

	srv, err := NewServer(cfg, st, adapter)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health body: %s", w.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	t.Setenv("SICHGATE_DISABLE_AUTH", "")
	t.Setenv("SICHGATE_API_KEY", "")

	if _, err := NewServer(&config.Config{}, nil, nil); err == nil {
		t.Fatal("NewServer without auth config: expected error")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	t.Setenv("SICHGATE_API_KEY", "secret")

	st, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer st.Close()

	srv, err := NewServer(&config.Config{}, st, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no key: got %d want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("with key: got %d want 200", w.Code)
	}
}

func TestListScenarios(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/scenarios", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: got %d: %s", w.Code, w.Body.String())
	}
	var out []scenarioSummary
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 6 {
		t.Fatalf("list: got %d scenarios want 6", len(out))
	}

	w = doRequest(t, srv, http.MethodGet, "/api/scenarios?group=capability", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list group: got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("capability group: got %d scenarios want 3", len(out))
	}

	w = doRequest(t, srv, http.MethodGet, "/api/scenarios?group=bogus", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad group: got %d want 400", w.Code)
	}
}

func TestGetScenario(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/scenarios/capability_typo_robustness", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TYPO_001") {
		t.Fatalf("get body missing cases: %s", w.Body.String())
	}

	w = doRequest(t, srv, http.MethodGet, "/api/scenarios/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: got %d want 404", w.Code)
	}
}

func TestStartRunAndFetchResults(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/runs", runRequest{Scenarios: "capability"})
	if w.Code != http.StatusCreated {
		t.Fatalf("start run: got %d: %s", w.Code, w.Body.String())
	}

	var created struct {
		Run struct {
			ID string `json:"id"`
		} `json:"run"`
		Summary struct {
			TotalTests int     `json:"total_tests"`
			PassRate   float64 `json:"pass_rate"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Run.ID == "" {
		t.Fatal("start run: empty run id")
	}
	if created.Summary.TotalTests != 20 {
		t.Fatalf("start run: got %d total tests want 20", created.Summary.TotalTests)
	}

	// Run summary readable back.
	w = doRequest(t, srv, http.MethodGet, "/api/runs/"+created.Run.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get run: got %d", w.Code)
	}

	// Per-scenario case results.
	w = doRequest(t, srv, http.MethodGet, "/api/runs/"+created.Run.ID+"/results", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get results: got %d", w.Code)
	}
	var results map[string][]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results: got %d scenarios want 3", len(results))
	}

	// Appears in listings.
	w = doRequest(t, srv, http.MethodGet, "/api/runs", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list runs: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), created.Run.ID) {
		t.Fatalf("list runs missing %s", created.Run.ID)
	}
}

func TestStartRunValidation(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodPost, "/api/runs",
		runRequest{Scenarios: "capability", ScenarioIDs: []string{"x"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mutually exclusive: got %d want 400", w.Code)
	}

	w = doRequest(t, srv, http.MethodPost, "/api/runs",
		runRequest{ScenarioIDs: []string{"does-not-exist"}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown scenario id: got %d want 404", w.Code)
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/runs/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get run: got %d want 404", w.Code)
	}
	w = doRequest(t, srv, http.MethodGet, "/api/runs/nope/results", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get results: got %d want 404", w.Code)
	}
}

func TestListRunsParams(t *testing.T) {
	srv := newTestServer(t)

	w := doRequest(t, srv, http.MethodGet, "/api/runs?limit=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: got %d want 400", w.Code)
	}
	w = doRequest(t, srv, http.MethodGet, "/api/runs?since=notatime", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad since: got %d want 400", w.Code)
	}
}
