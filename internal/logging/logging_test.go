package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"debug":   log.DebugLevel,
		"INFO":    log.InfoLevel,
		"":        log.InfoLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("want error for unknown level")
	}
}

func TestLevelFilters(t *testing.T) {
	var b bytes.Buffer
	l := New(&b, "warn")
	l.Info("hidden")
	l.Warn("shown", "junctions", 4)
	out := b.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "junctions=4") {
		t.Fatalf("missing warn line or field: %q", out)
	}
}

func TestUnknownLevelWarns(t *testing.T) {
	var b bytes.Buffer
	New(&b, "chatty")
	if !strings.Contains(b.String(), "chatty") {
		t.Fatalf("want fallback warning, got %q", b.String())
	}
}
