package api

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sichgate/sichgate/internal/catalog"
	"github.com/sichgate/sichgate/internal/evaluator"
	"github.com/sichgate/sichgate/internal/report"
	"github.com/sichgate/sichgate/internal/runner"
	"github.com/sichgate/sichgate/internal/store"
)

type runRequest struct {
	Scenarios   string   `json:"scenarios,omitempty"`
	ScenarioIDs []string `json:"scenario_ids,omitempty"`
	Concurrency *int     `json:"concurrency,omitempty"`
}

type scenarioSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Cases       int    `json:"cases"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListScenarios(c *gin.Context) {
	group := strings.TrimSpace(c.Query("group"))
	scenarios, err := catalog.Select(group)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	out := make([]scenarioSummary, 0, len(scenarios))
	for _, sc := range scenarios {
		out = append(out, scenarioSummary{
			ID:          sc.ID,
			Name:        sc.Name,
			Description: sc.Description,
			Category:    string(sc.Category),
			Cases:       len(sc.Cases),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetScenario(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing scenario id"))
		return
	}

	sc, err := catalog.ByID(id)
	if err != nil {
		respondError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

func (s *Server) handleStartRun(c *gin.Context) {
	if s == nil || s.store == nil || s.adapter == nil || s.config == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	group := strings.TrimSpace(req.Scenarios)
	if group != "" && len(req.ScenarioIDs) > 0 {
		respondError(c, http.StatusBadRequest, errors.New("scenarios and scenario_ids are mutually exclusive"))
		return
	}

	scenarios, err := catalog.Select(group)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if len(req.ScenarioIDs) > 0 {
		scenarios = scenarios[:0]
		for _, id := range req.ScenarioIDs {
			sc, err := catalog.ByID(strings.TrimSpace(id))
			if err != nil {
				respondError(c, http.StatusNotFound, err)
				return
			}
			scenarios = append(scenarios, sc)
		}
	}
	if len(scenarios) == 0 {
		respondError(c, http.StatusBadRequest, errors.New("no scenarios selected"))
		return
	}

	concurrency := s.config.Run.Concurrency
	if req.Concurrency != nil {
		concurrency = *req.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	r := runner.New(s.adapter, evaluator.NewRegistry(), runner.Config{
		Concurrency: concurrency,
		Timeout:     s.config.Run.Timeout,
	})

	ctx := c.Request.Context()
	startedAt := time.Now().UTC()

	byScenario, err := r.RunScenarios(ctx, scenarios)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	finishedAt := time.Now().UTC()

	summary, err := report.Summarize(r.Results(), s.adapter.Stats())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	rec := &store.RunRecord{
		ID:         newRunID(startedAt),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Adapter:    s.adapter.Name(),
		Model:      s.config.Adapter.Model,
		Summary:    summary,
		Results:    byScenario,
	}
	if err := s.store.SaveRun(ctx, rec); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"run":     rec,
		"summary": summary,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s == nil || s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	limit, err := parseLimitParam(c.Query("limit"), 20)
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	since, err := parseTimeParam(c.Query("since"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	until, err := parseTimeParam(c.Query("until"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	filter := store.RunFilter{
		Adapter: strings.TrimSpace(c.Query("adapter")),
		Since:   since,
		Until:   until,
		Limit:   limit,
	}

	runs, err := s.store.ListRuns(c.Request.Context(), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s == nil || s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing run id"))
		return
	}

	run, err := s.store.GetRun(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, fmt.Errorf("run %q not found", id))
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, run)
}

func (s *Server) handleGetRunResults(c *gin.Context) {
	if s == nil || s.store == nil {
		respondError(c, http.StatusInternalServerError, errors.New("server not initialized"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("missing run id"))
		return
	}

	if _, err := s.store.GetRun(c.Request.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, fmt.Errorf("run %q not found", id))
			return
		}
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	results, err := s.store.GetCaseResults(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseLimitParam(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}

func parseTimeParam(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want RFC3339)", raw)
	}
	return t, nil
}

func newRunID(t time.Time) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("run_%s", t.Format("20060102_150405"))
	}
	return fmt.Sprintf("run_%s_%s", t.Format("20060102_150405"), hex.EncodeToString(buf))
}
