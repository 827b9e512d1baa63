package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sichgate/sichgate/internal/report"
	"github.com/sichgate/sichgate/internal/runner"
)

const defaultHistoryLimit = 50

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	insertRunStmt   *sql.Stmt
	insertCasesStmt *sql.Stmt
	getRunStmt      *sql.Stmt
	casesByRunStmt  *sql.Stmt
}

// NewSQLiteStore opens or creates a SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty sqlite path")
	}
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create sqlite dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping sqlite: %w", err)
	}

	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	st := &SQLiteStore{db: db}
	if err := st.prepareStatements(); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func initSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON`,
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			adapter TEXT NOT NULL,
			model TEXT NOT NULL,
			total_tests INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			pass_rate REAL NOT NULL,
			risk_tier TEXT NOT NULL,
			summary_json TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS case_results (
			run_id TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			results BLOB NOT NULL,
			PRIMARY KEY (run_id, scenario_id),
			FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_adapter ON runs(adapter)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	if s == nil || s.db == nil {
		return errors.New("store: nil sqlite store")
	}

	ctx := context.Background()
	type stmtSpec struct {
		dst    **sql.Stmt
		query  string
		errFmt string
	}

	specs := []stmtSpec{
		{
			dst: &s.insertRunStmt,
			query: `
				INSERT INTO runs (
					id, started_at, finished_at, adapter, model, total_tests, passed, failed, pass_rate, risk_tier, summary_json
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
			errFmt: "store: prepare insert run: %w",
		},
		{
			dst: &s.insertCasesStmt,
			query: `
				INSERT INTO case_results (run_id, scenario_id, results) VALUES (?, ?, ?)
			`,
			errFmt: "store: prepare insert cases: %w",
		},
		{
			dst: &s.getRunStmt,
			query: `
				SELECT id, started_at, finished_at, adapter, model, summary_json
				FROM runs WHERE id = ?
			`,
			errFmt: "store: prepare get run: %w",
		},
		{
			dst: &s.casesByRunStmt,
			query: `
				SELECT scenario_id, results FROM case_results WHERE run_id = ? ORDER BY scenario_id ASC
			`,
			errFmt: "store: prepare get cases: %w",
		},
	}

	for _, spec := range specs {
		stmt, err := s.db.PrepareContext(ctx, spec.query)
		if err != nil {
			return fmt.Errorf(spec.errFmt, err)
		}
		*spec.dst = stmt
	}

	return nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s == nil {
		return nil
	}
	stmts := []*sql.Stmt{
		s.insertRunStmt,
		s.insertCasesStmt,
		s.getRunStmt,
		s.casesByRunStmt,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun persists a run summary and its per-scenario case results in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *RunRecord) error {
	if s == nil {
		return errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return errors.New("store: nil context")
	}
	if run == nil {
		return errors.New("store: nil run")
	}

	id := strings.TrimSpace(run.ID)
	if id == "" {
		return errors.New("store: empty run id")
	}
	if run.StartedAt.IsZero() || run.FinishedAt.IsZero() {
		return errors.New("store: missing run timestamps")
	}
	if run.Summary == nil {
		return errors.New("store: nil run summary")
	}

	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("store: marshal summary: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	runStmt := tx.StmtContext(ctx, s.insertRunStmt)
	defer runStmt.Close()

	_, err = runStmt.ExecContext(
		ctx,
		id,
		run.StartedAt.UTC().UnixMilli(),
		run.FinishedAt.UTC().UnixMilli(),
		run.Adapter,
		run.Model,
		run.Summary.TotalTests,
		run.Summary.Passed,
		run.Summary.Failed,
		run.Summary.PassRate,
		string(run.Summary.RiskTier),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	if len(run.Results) > 0 {
		caseStmt := tx.StmtContext(ctx, s.insertCasesStmt)
		defer caseStmt.Close()

		scenarioIDs := make([]string, 0, len(run.Results))
		for sid := range run.Results {
			scenarioIDs = append(scenarioIDs, sid)
		}
		sort.Strings(scenarioIDs)

		for _, sid := range scenarioIDs {
			resultsJSON, err := json.Marshal(run.Results[sid])
			if err != nil {
				return fmt.Errorf("store: marshal case results: %w", err)
			}
			if _, err := caseStmt.ExecContext(ctx, id, sid, resultsJSON); err != nil {
				return fmt.Errorf("store: insert case results: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit run: %w", err)
	}
	return nil
}

// GetRun loads a run summary by id. Case results are loaded separately via
// GetCaseResults.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("store: empty run id")
	}

	row := s.getRunStmt.QueryRowContext(ctx, id)
	rec, err := scanRun(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	return rec, nil
}

// ListRuns returns runs matching the filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]*RunRecord, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, started_at, finished_at, adapter, model, summary_json FROM runs WHERE 1=1`)

	var args []any
	if adapter := strings.TrimSpace(filter.Adapter); adapter != "" {
		sb.WriteString(` AND adapter = ?`)
		args = append(args, adapter)
	}
	if !filter.Since.IsZero() {
		sb.WriteString(` AND started_at >= ?`)
		args = append(args, filter.Since.UTC().UnixMilli())
	}
	if !filter.Until.IsZero() {
		sb.WriteString(` AND started_at <= ?`)
		args = append(args, filter.Until.UTC().UnixMilli())
	}
	sb.WriteString(` ORDER BY started_at DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		rec, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	return out, nil
}

// GetCaseResults loads the per-scenario case results for a run.
func (s *SQLiteStore) GetCaseResults(ctx context.Context, runID string) (map[string][]runner.Result, error) {
	if s == nil {
		return nil, errors.New("store: nil sqlite store")
	}
	if ctx == nil {
		return nil, errors.New("store: nil context")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("store: empty run id")
	}

	rows, err := s.casesByRunStmt.QueryContext(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("store: get case results: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]runner.Result)
	for rows.Next() {
		var (
			scenarioID  string
			resultsJSON []byte
		)
		if err := rows.Scan(&scenarioID, &resultsJSON); err != nil {
			return nil, fmt.Errorf("store: scan case results: %w", err)
		}
		var results []runner.Result
		if err := json.Unmarshal(resultsJSON, &results); err != nil {
			return nil, fmt.Errorf("store: decode case results: %w", err)
		}
		out[scenarioID] = results
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: get case results: %w", err)
	}
	return out, nil
}

func scanRun(scan func(dest ...any) error) (*RunRecord, error) {
	var (
		id           string
		startedAtMS  int64
		finishedAtMS int64
		adapter      string
		modelName    string
		summaryJSON  sql.NullString
	)
	if err := scan(&id, &startedAtMS, &finishedAtMS, &adapter, &modelName, &summaryJSON); err != nil {
		return nil, err
	}

	var summary *report.Summary
	if summaryJSON.Valid && strings.TrimSpace(summaryJSON.String) != "" && summaryJSON.String != "null" {
		summary = &report.Summary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), summary); err != nil {
			return nil, fmt.Errorf("decode summary: %w", err)
		}
	}

	return &RunRecord{
		ID:         id,
		StartedAt:  unixMilliUTC(startedAtMS),
		FinishedAt: unixMilliUTC(finishedAtMS),
		Adapter:    adapter,
		Model:      modelName,
		Summary:    summary,
	}, nil
}
