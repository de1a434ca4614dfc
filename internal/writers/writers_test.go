package writers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"syscall"
	"testing"

	"fusionsite/pkg/api"
)

func sampleResult() api.OptimizeResultV1 {
	seed := int64(42)
	return api.OptimizeResultV1{
		Enzyme:         "BsaI",
		SequenceLength: 1200,
		Algorithm:      "branch_bound",
		Optimal:        true,
		Feasible:       true,
		NodesExplored:  321,
		Seed:           &seed,
		TotalScore:     245.5,
		Solution: api.SolutionV1{
			Junctions:   []int{300, 600, 900},
			Overhangs:   []string{"GGAG", "TACT", "GCTT"},
			SetFidelity: 1,
			Fragments:   []int{300, 300, 300, 300},
			Details: []api.JunctionV1{
				{Position: 300, Overhang: "GGAG", Composite: 82},
				{Position: 600, Overhang: "TACT", Composite: 81, Mandatory: true},
				{Position: 900, Overhang: "GCTT", Composite: 82.5, Warnings: []string{"high-gc"}},
			},
		},
		FailurePrediction: api.FailurePredictionV1{
			JunctionFailure: []float64{0.05, 0.05, 0.05},
			Predictions: []api.PredictionV1{
				{Type: "primer_quality", Severity: "high", Probability: 0.31, Junction: 1, Message: "weak primer", Mitigation: "extend the primer"},
			},
			Summary: api.PredictionSummaryV1{PredictedSuccessRate: 0.857, High: 1, Recommendation: "proceed"},
		},
	}
}

func TestUnknownFormatError(t *testing.T) {
	var b bytes.Buffer
	err := Write("nope-format", &b, sampleResult(), Options{})
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("want unknown format error, got %v", err)
	}
}

func TestFormatsRegistered(t *testing.T) {
	got := strings.Join(Formats(), ",")
	for _, f := range []string{"json", "jsonl", "text", "yaml"} {
		if !strings.Contains(got, f) {
			t.Fatalf("format %q not registered (have %s)", f, got)
		}
	}
}

func TestRegisterLastWins(t *testing.T) {
	Register("test-fmt", func(w io.Writer, _ any, _ Options) error { _, err := io.WriteString(w, "a"); return err })
	Register("TEST-FMT", func(w io.Writer, _ any, _ Options) error { _, err := io.WriteString(w, "b"); return err })
	var b bytes.Buffer
	if err := Write("test-fmt", &b, nil, Options{}); err != nil || b.String() != "b" {
		t.Fatalf("got %q, %v", b.String(), err)
	}
}

func TestJSON(t *testing.T) {
	var b bytes.Buffer
	if err := Write("json", &b, sampleResult(), Options{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(b.Bytes(), &back); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, b.String())
	}
	sol := back["solution"].(map[string]any)
	if len(sol["junctions"].([]any)) != 3 || back["optimal"] != true {
		t.Fatalf("unexpected JSON: %s", b.String())
	}
}

func TestJSONLOneLinePerElement(t *testing.T) {
	runs := []api.RunV1{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	var b bytes.Buffer
	if err := Write("jsonl", &b, runs, Options{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 3 || !strings.Contains(lines[1], `"id":"b"`) {
		t.Fatalf("lines = %q", lines)
	}
}

func TestYAML(t *testing.T) {
	var b bytes.Buffer
	if err := Write("yaml", &b, sampleResult(), Options{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := b.String()
	for _, want := range []string{"enzyme: BsaI", "setFidelity: 1", "- GGAG", "predictedSuccessRate: 0.857"} {
		if !strings.Contains(out, want) {
			t.Fatalf("yaml missing %q:\n%s", want, out)
		}
	}
}

func TestTextResult(t *testing.T) {
	var b bytes.Buffer
	if err := Write("text", &b, sampleResult(), Options{}); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"junction design  BsaI  1200 bp linear",
		"algorithm    branch_bound (optimal)  nodes 321",
		"seed         42",
		"fragments    300 300 300 300",
		"# 5'-",
		"GGAG",
		"mandatory",
		"high-gc",
		"success 85.7%",
		"HIGH",
		"mitigation: extend the primer",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("text missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("plain text must not carry escape codes")
	}
}

func TestTextInfeasible(t *testing.T) {
	r := sampleResult()
	r.Feasible = false
	r.Violations = []api.ViolationV1{{Kind: "set-fidelity", Message: "set fidelity 0.8 below 0.9", Junction: -1, Fragment: -1}}
	var b bytes.Buffer
	if err := Write("text", &b, r, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "feasible     no") || !strings.Contains(b.String(), "- set-fidelity: set fidelity 0.8") {
		t.Fatalf("violations not rendered:\n%s", b.String())
	}
}

func TestTextTables(t *testing.T) {
	cases := []struct {
		payload any
		want    []string
	}{
		{[]api.EnzymeV1{{Name: "BsaI", Site: "GGTCTC", CutTop: 1, CutBottom: 5, OverhangLen: 4, MinLength: 26}}, []string{"name", "BsaI", "1/5"}},
		{[]api.SiteCountV1{{Enzyme: "BbsI", Sites: 2, Internal: 2, Status: "auto-fixable"}}, []string{"internal", "BbsI", "auto-fixable"}},
		{[]api.RunV1{}, []string{"no saved runs"}},
		{[]api.RunV1{{ID: "r1", Enzyme: "BsaI", Feasible: true}}, []string{"r1", "yes"}},
		{api.DomesticationV1{Enzyme: "BsaI", Status: "needs-attention", Sites: []api.DomesticationSiteV1{{Position: 40, Motif: "GGTCTC", Orientation: "forward"}}}, []string{"needs-attention", "no valid junction nearby"}},
	}
	for _, tc := range cases {
		var b bytes.Buffer
		if err := Write("text", &b, tc.payload, Options{}); err != nil {
			t.Fatalf("%T: %v", tc.payload, err)
		}
		for _, w := range tc.want {
			if !strings.Contains(b.String(), w) {
				t.Errorf("%T: missing %q in\n%s", tc.payload, w, b.String())
			}
		}
	}
}

func TestTextUnsupported(t *testing.T) {
	if err := Write("text", io.Discard, 42, Options{}); err == nil {
		t.Fatalf("want error for unsupported payload")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, syscall.EPIPE }

func TestWriteErrorSurfaces(t *testing.T) {
	err := Write("text", failWriter{}, sampleResult(), Options{})
	if !IsBrokenPipe(err) {
		t.Fatalf("want broken pipe, got %v", err)
	}
}

func TestIsBrokenPipe(t *testing.T) {
	if !IsBrokenPipe(fmt.Errorf("write: %w", syscall.EPIPE)) || !IsBrokenPipe(io.ErrClosedPipe) {
		t.Fatalf("wrapped EPIPE / closed pipe not recognised")
	}
	if IsBrokenPipe(nil) || IsBrokenPipe(io.EOF) {
		t.Fatalf("false positive")
	}
}
