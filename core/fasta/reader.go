// core/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// Record is one parsed FASTA entry. Circular is set when the header
// description mentions a circular topology ("circular", "topology=circular").
type Record struct {
	ID          string
	Description string
	Seq         string
	Circular    bool
}

// Parse reads FASTA from r and calls emit once per record. Text without any
// header is returned as a single record with an empty ID, so bare pasted
// sequence works too. Cancellation is checked per line.
func Parse(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024 // long single-line sequences
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		cur    Record
		seq    bytes.Buffer
		opened bool
	)
	flush := func() error {
		if !opened && seq.Len() == 0 {
			return nil
		}
		cur.Seq = seq.String()
		err := emit(cur)
		seq.Reset()
		return err
	}

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 || line[0] == ';' {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			cur = parseHeader(string(line[1:]))
			opened = true
			continue
		}
		seq.Write(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

// ReadAll parses every record at path ("-" for stdin, gzip allowed).
func ReadAll(ctx context.Context, path string) ([]Record, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	var out []Record
	err = Parse(ctx, rc, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// First returns the first record at path, or the one whose ID matches id.
func First(ctx context.Context, path, id string) (Record, error) {
	recs, err := ReadAll(ctx, path)
	if err != nil {
		return Record{}, err
	}
	for _, r := range recs {
		if id == "" || r.ID == id {
			return r, nil
		}
	}
	if id != "" {
		return Record{}, fmt.Errorf("%s: no record %q", path, id)
	}
	return Record{}, fmt.Errorf("%s: no sequence records", path)
}

func parseHeader(hdr string) Record {
	hdr = strings.TrimSpace(hdr)
	r := Record{ID: hdr}
	if i := strings.IndexAny(hdr, " \t"); i >= 0 {
		r.ID, r.Description = hdr[:i], strings.TrimSpace(hdr[i+1:])
	}
	desc := strings.ToLower(r.Description)
	r.Circular = strings.Contains(desc, "topology=circular") ||
		(strings.Contains(desc, "circular") && !strings.Contains(desc, "linear"))
	return r
}
