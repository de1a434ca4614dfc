// Package store keeps a history of optimization runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fusionsite/pkg/api"
)

var (
	ErrNotFound  = errors.New("run not found")
	ErrInvalidID = errors.New("invalid run id")
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created_at  TEXT    NOT NULL,
	enzyme      TEXT    NOT NULL,
	algorithm   TEXT    NOT NULL,
	seq_length  INTEGER NOT NULL,
	feasible    INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	request     TEXT    NOT NULL,
	result      TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created ON runs(created_at DESC);
`

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log *log.Logger
	now func() time.Time
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-process database.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}
	// pragmas in the DSN apply to every pooled connection
	dsn := path + "?_pragma=busy_timeout(10000)&_pragma=synchronous(NORMAL)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	logger.Debug("run store open", "path", path)
	return &Store{db: db, log: logger, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save records one run and returns its id.
func (s *Store) Save(ctx context.Context, req api.OptimizeRequestV1, res api.OptimizeResultV1, took time.Duration) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("store: id: %w", err)
	}
	req.Save = false
	res.RunID = ""
	rq, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("store: encode request: %w", err)
	}
	rs, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("store: encode result: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, enzyme, algorithm, seq_length, feasible, duration_ms, request, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), s.now().UTC().Format(time.RFC3339Nano), res.Enzyme, res.Algorithm,
		res.SequenceLength, res.Feasible, took.Milliseconds(), string(rq), string(rs),
	)
	if err != nil {
		return "", fmt.Errorf("store: insert: %w", err)
	}
	s.log.Debug("run saved", "id", id, "enzyme", res.Enzyme, "feasible", res.Feasible)
	return id.String(), nil
}

// List returns run summaries, newest first. limit <= 0 means 50.
func (s *Store) List(ctx context.Context, limit int) ([]api.RunV1, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, enzyme, algorithm, seq_length, feasible, duration_ms
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()
	out := []api.RunV1{}
	for rows.Next() {
		var r api.RunV1
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Enzyme, &r.Algorithm, &r.SeqLength, &r.Feasible, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get loads one run with its request and result.
func (s *Store) Get(ctx context.Context, id string) (api.RunV1, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return api.RunV1{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	var (
		r      api.RunV1
		rq, rs string
	)
	err = s.db.QueryRowContext(ctx,
		`SELECT id, created_at, enzyme, algorithm, seq_length, feasible, duration_ms, request, result
		 FROM runs WHERE id = ?`, u.String(),
	).Scan(&r.ID, &r.CreatedAt, &r.Enzyme, &r.Algorithm, &r.SeqLength, &r.Feasible, &r.DurationMS, &rq, &rs)
	if errors.Is(err, sql.ErrNoRows) {
		return api.RunV1{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return api.RunV1{}, fmt.Errorf("store: get: %w", err)
	}
	r.Request = new(api.OptimizeRequestV1)
	r.Result = new(api.OptimizeResultV1)
	if err := json.Unmarshal([]byte(rq), r.Request); err != nil {
		return api.RunV1{}, fmt.Errorf("store: decode request: %w", err)
	}
	if err := json.Unmarshal([]byte(rs), r.Result); err != nil {
		return api.RunV1{}, fmt.Errorf("store: decode result: %w", err)
	}
	r.Result.RunID = r.ID
	return r, nil
}
