package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"fusionsite/internal/logging"
	"fusionsite/pkg/api"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs", "history.db"), logging.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func result(enz string, feasible bool) api.OptimizeResultV1 {
	return api.OptimizeResultV1{
		Enzyme:         enz,
		Algorithm:      "branch_bound",
		SequenceLength: 1200,
		Feasible:       feasible,
		Solution:       api.SolutionV1{Junctions: []int{300, 600, 900}, Overhangs: []string{"GGAG", "TACT", "GCTT"}, SetFidelity: 1},
	}
}

func TestSaveGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	req := api.OptimizeRequestV1{Sequence: "ACGT", Enzyme: "BsaI", NumFragments: 4, Save: true}
	id, err := s.Save(ctx, req, result("BsaI", true), 1500*time.Millisecond)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != id || got.Enzyme != "BsaI" || !got.Feasible || got.DurationMS != 1500 || got.SeqLength != 1200 {
		t.Fatalf("run = %+v", got)
	}
	if got.Request == nil || got.Request.NumFragments != 4 || got.Request.Save {
		t.Fatalf("request = %+v", got.Request)
	}
	if got.Result == nil || got.Result.RunID != id || len(got.Result.Solution.Junctions) != 3 {
		t.Fatalf("result = %+v", got.Result)
	}
	if _, err := time.Parse(time.RFC3339Nano, got.CreatedAt); err != nil {
		t.Fatalf("created_at %q: %v", got.CreatedAt, err)
	}
}

func TestListNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, enz := range []string{"BsaI", "BsmBI", "BbsI"} {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		id, err := s.Save(ctx, api.OptimizeRequestV1{Enzyme: enz}, result(enz, i != 1), time.Second)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}
	runs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Fatalf("order = %+v", runs)
	}
	if runs[1].Feasible || runs[1].Request != nil {
		t.Fatalf("summary row = %+v", runs[1])
	}
	if two, _ := s.List(ctx, 2); len(two) != 2 {
		t.Fatalf("limit ignored: %d", len(two))
	}
}

func TestGetErrors(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	if _, err := s.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("want ErrInvalidID, got %v", err)
	}
	if _, err := s.Get(ctx, "0190b5a8-7c1e-7000-8000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEmptyList(t *testing.T) {
	s, err := Open(":memory:", logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runs, err := s.List(context.Background(), 10)
	if err != nil || runs == nil || len(runs) != 0 {
		t.Fatalf("runs = %v, %v", runs, err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.db")
	s, err := Open(path, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.Save(context.Background(), api.OptimizeRequestV1{Enzyme: "BsaI"}, result("BsaI", true), 0)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	s, err = Open(path, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Get(context.Background(), id); err != nil {
		t.Fatalf("run lost after reopen: %v", err)
	}
}

func TestPragmasOnEveryConnection(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		// hold each connection so the pool opens a fresh one
		conn, err := s.db.Conn(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatal(err)
		}
		var mode string
		if err := conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil {
			t.Fatal(err)
		}
		if timeout != 10000 || mode != "wal" {
			t.Fatalf("connection %d: busy_timeout=%d journal_mode=%s", i, timeout, mode)
		}
	}
}
