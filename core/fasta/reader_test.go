package fasta

import (
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const plain = `>pUC19 topology=circular
ACGT
acgt
>frag1 linear insert
NNNN
`

// writeGz creates a gzipped FASTA file in a temp dir and returns its path.
func writeGz(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "test.fa.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("tmp: %v", err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(data)); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestReadAllGzip(t *testing.T) {
	recs, err := ReadAll(context.Background(), writeGz(t, plain))
	if err != nil {
		t.Fatalf("read gz: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records=%d", len(recs))
	}
	if recs[0].ID != "pUC19" || recs[0].Seq != "ACGTacgt" || !recs[0].Circular {
		t.Fatalf("first=%+v", recs[0])
	}
	if recs[1].ID != "frag1" || recs[1].Circular || recs[1].Description != "linear insert" {
		t.Fatalf("second=%+v", recs[1])
	}
}

func TestParseBareSequence(t *testing.T) {
	var got []Record
	err := Parse(context.Background(), strings.NewReader("ACGT\nTTGA\n"), func(r Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "" || got[0].Seq != "ACGTTTGA" {
		t.Fatalf("got=%+v", got)
	}
}

func TestReadStdin(t *testing.T) {
	orig := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r
	defer func() { os.Stdin = orig }()
	go func() {
		_, _ = io.WriteString(w, plain)
		_ = w.Close()
	}()

	rec, err := First(context.Background(), "-", "frag1")
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	if rec.Seq != "NNNN" {
		t.Fatalf("rec=%+v", rec)
	}
}

func TestFirstMissing(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "x.fa")
	if err := os.WriteFile(fn, []byte(">s\nACGT\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := First(context.Background(), fn, "nope"); err == nil {
		t.Fatal("expected missing-record error")
	}
	if _, err := ReadAll(context.Background(), filepath.Join(t.TempDir(), "absent.fa")); err == nil {
		t.Fatal("expected open error")
	}
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := 0
	err := Parse(ctx, strings.NewReader(plain), func(Record) error { n++; return nil })
	if err == nil || n != 0 {
		t.Fatalf("err=%v records=%d", err, n)
	}
}
