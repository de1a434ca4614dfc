package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fusionsite-core/engine"

	"fusionsite/internal/logging"
)

const doc = `
enzymes:
  - name: BsaI-HF
    site: ggtctc
    cut-top: 1
    cut-bottom: 5
  - name: BsaI
    site: GGTCTC
    cut-top: 2
    cut-bottom: 6
`

func TestParse(t *testing.T) {
	list, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d enzymes", len(list))
	}
	if list[0].Site != "GGTCTC" || list[0].OverhangLen() != 4 {
		t.Fatalf("first = %+v", list[0])
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key": "enzymes:\n  - name: X\n    site: GGTCTC\n    cut_top: 1\n    cut-bottom: 5\n",
		"blunt":       "enzymes:\n  - name: X\n    site: GGTCTC\n    cut-top: 3\n    cut-bottom: 3\n",
		"bad base":    "enzymes:\n  - name: X\n    site: GGTXTC\n    cut-top: 1\n    cut-bottom: 5\n",
		"duplicate":   "enzymes:\n  - name: X\n    site: GGTCTC\n    cut-top: 1\n    cut-bottom: 5\n  - name: x\n    site: GGTCTC\n    cut-top: 1\n    cut-bottom: 5\n",
	}
	for name, in := range cases {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("%s: want error", name)
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	list, err := Parse(strings.NewReader(""))
	if err != nil || len(list) != 0 {
		t.Fatalf("empty doc = %v, %v", list, err)
	}
}

func TestApplyRegistersAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enzymes.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	eng := engine.New(engine.Config{})
	var logs bytes.Buffer
	if err := Apply(eng, []string{path}, logging.New(&logs, "debug")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if e, err := eng.Enzyme("bsai-hf"); err != nil || e.Site != "GGTCTC" {
		t.Fatalf("BsaI-HF = %+v, %v", e, err)
	}
	if e, _ := eng.Enzyme("BsaI"); e.CutTop != 2 {
		t.Fatalf("BsaI not overridden: %+v", e)
	}
	if !strings.Contains(logs.String(), "enzyme redefined") {
		t.Fatalf("want redefinition logged, got %q", logs.String())
	}
}

func TestWriteRoundTrip(t *testing.T) {
	list, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := Write(&b, list); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := Parse(&b)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(back) != len(list) || back[1] != list[1] {
		t.Fatalf("round trip = %+v, want %+v", back, list)
	}
}

func TestLoadMissing(t *testing.T) {
	if err := Apply(engine.New(engine.Config{}), []string{"/nonexistent/enzymes.yaml"}, logging.Discard()); err == nil {
		t.Fatalf("want error for missing file")
	}
}
