// internal/writers/text.go
package writers

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"fusionsite/internal/pretty"
	"fusionsite/pkg/api"
)

func init() { Register("text", writeText) }

type palette struct {
	on                                bool
	title, dim, high, medium, low, ok lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	if !color {
		return palette{}
	}
	r := lipgloss.NewRenderer(w)
	return palette{
		on:     true,
		title:  r.NewStyle().Bold(true),
		dim:    r.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		high:   r.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
		medium: r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		low:    r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
	}
}

func (p palette) paint(s lipgloss.Style, text string) string {
	if !p.on {
		return text
	}
	return s.Render(text)
}

func (p palette) severity(sev, text string) string {
	switch sev {
	case "high":
		return p.paint(p.high, text)
	case "medium":
		return p.paint(p.medium, text)
	}
	return p.paint(p.low, text)
}

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, a ...any) {
	if e.err == nil {
		_, e.err = fmt.Fprintf(e.w, format, a...)
	}
}

func writeText(w io.Writer, payload any, o Options) error {
	p := newPalette(w, o.Color)
	ew := &errWriter{w: w}
	switch v := payload.(type) {
	case api.OptimizeResultV1:
		textResult(ew, p, v, o)
	case *api.OptimizeResultV1:
		textResult(ew, p, *v, o)
	case api.DomesticationV1:
		textDomestication(ew, p, v)
	case []api.EnzymeV1:
		textEnzymes(ew, v)
	case []api.SiteCountV1:
		textSurvey(ew, p, v)
	case []api.RunV1:
		textRuns(ew, p, v)
	case api.RunV1:
		textRun(ew, p, v, o)
	default:
		return fmt.Errorf("text: unsupported payload %T", payload)
	}
	return ew.err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func topology(circular bool) string {
	if circular {
		return "circular"
	}
	return "linear"
}

func textResult(ew *errWriter, p palette, r api.OptimizeResultV1, o Options) {
	ew.printf("%s\n", p.paint(p.title, fmt.Sprintf("junction design  %s  %d bp %s", r.Enzyme, r.SequenceLength, topology(r.Circular))))
	if r.RunID != "" {
		ew.printf("run          %s\n", r.RunID)
	}
	opt := ""
	if r.Optimal {
		opt = " (optimal)"
	}
	ew.printf("algorithm    %s%s  nodes %d\n", r.Algorithm, opt, r.NodesExplored)
	if r.Seed != nil {
		ew.printf("seed         %d\n", *r.Seed)
	}
	feasible := p.paint(p.ok, "yes")
	if !r.Feasible {
		feasible = p.paint(p.high, "no")
	}
	ew.printf("feasible     %s  set fidelity %.4f  total score %.2f\n", feasible, r.Solution.SetFidelity, r.TotalScore)
	if r.BudgetExhausted {
		ew.printf("%s\n", p.paint(p.medium, "search budget exhausted; result may not be optimal"))
	}
	if r.Repaired {
		ew.printf("%s\n", p.paint(p.dim, "junction set was repaired for set fidelity"))
	}
	ew.printf("fragments    %s\n", joinInts(r.Solution.Fragments))
	ew.printf("\n%s", pretty.RenderMap(pretty.Map{
		Length:    r.SequenceLength,
		Circular:  r.Circular,
		Positions: r.Solution.Junctions,
		Overhangs: r.Solution.Overhangs,
	}, o.Map))

	if ew.err != nil || len(r.Solution.Details) == 0 {
		return
	}
	ew.printf("\n")
	tw := tabwriter.NewWriter(ew.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tposition\toverhang\tcomposite\toverhang q\tfwd\trev\trisk\tbio\twarnings")
	for i, d := range r.Solution.Details {
		warn := strings.Join(d.Warnings, ",")
		if d.Mandatory {
			warn = strings.TrimPrefix(warn+",mandatory", ",")
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%.1f\t%.0f\t%.0f\t%.0f\t%.0f\t%.0f\t%s\n",
			i+1, d.Position, d.Overhang, d.Composite,
			d.Scores.OverhangQuality, d.Scores.ForwardPrimer, d.Scores.ReversePrimer,
			d.Scores.RiskFactors, d.Scores.BiologicalContext, warn)
	}
	if err := tw.Flush(); err != nil {
		ew.err = err
		return
	}

	if len(r.Violations) > 0 {
		ew.printf("\n%s\n", p.paint(p.high, "violations"))
		for _, v := range r.Violations {
			ew.printf("  - %s: %s\n", v.Kind, v.Message)
		}
	}

	fp := r.FailurePrediction
	ew.printf("\n%s  success %.1f%%  (%d high, %d medium, %d low)\n",
		p.paint(p.title, "failure prediction"), 100*fp.Summary.PredictedSuccessRate,
		fp.Summary.High, fp.Summary.Medium, fp.Summary.Low)
	ew.printf("  %s\n", fp.Summary.Recommendation)
	for _, pr := range fp.Predictions {
		ew.printf("  %s %.2f  %s\n", p.severity(pr.Severity, fmt.Sprintf("%-6s", strings.ToUpper(pr.Severity))), pr.Probability, pr.Message)
		if pr.Mitigation != "" {
			ew.printf("         %s\n", p.paint(p.dim, "mitigation: "+pr.Mitigation))
		}
	}
	if r.Domestication != nil {
		ew.printf("\n")
		textDomestication(ew, p, *r.Domestication)
	}
}

func textDomestication(ew *errWriter, p palette, d api.DomesticationV1) {
	status := d.Status
	switch status {
	case "compatible":
		status = p.paint(p.ok, status)
	case "auto-fixable":
		status = p.paint(p.medium, status)
	default:
		status = p.paint(p.high, status)
	}
	ew.printf("%s  %s  %s  additional fragments %d\n", p.paint(p.title, "domestication"), d.Enzyme, status, d.AdditionalFragments)
	for _, s := range d.Sites {
		rec := "no valid junction nearby"
		if s.Recommended != nil {
			rec = fmt.Sprintf("junction %s @ %d (quality %.0f)", s.Recommended.Overhang, s.Recommended.Position, s.Recommended.Quality)
		}
		ew.printf("  %-6s @ %-7d %-7s  %s\n", s.Motif, s.Position, s.Orientation, rec)
	}
}

func textEnzymes(ew *errWriter, list []api.EnzymeV1) {
	if ew.err != nil {
		return
	}
	tw := tabwriter.NewWriter(ew.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tsite\tcut\toverhang\tmin length")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%d\t%d\n", e.Name, e.Site, e.CutTop, e.CutBottom, e.OverhangLen, e.MinLength)
	}
	ew.err = tw.Flush()
}

func textSurvey(ew *errWriter, p palette, list []api.SiteCountV1) {
	if ew.err != nil {
		return
	}
	tw := tabwriter.NewWriter(ew.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "enzyme\tsites\tinternal\tstatus")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.Enzyme, s.Sites, s.Internal, s.Status)
	}
	ew.err = tw.Flush()
}

func textRuns(ew *errWriter, p palette, runs []api.RunV1) {
	if ew.err != nil {
		return
	}
	if len(runs) == 0 {
		ew.printf("%s\n", p.paint(p.dim, "no saved runs"))
		return
	}
	tw := tabwriter.NewWriter(ew.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tcreated\tenzyme\talgorithm\tlength\tfeasible\tms")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%d\n", r.ID, r.CreatedAt, r.Enzyme, r.Algorithm, r.SeqLength, yesNo(r.Feasible), r.DurationMS)
	}
	ew.err = tw.Flush()
}

func textRun(ew *errWriter, p palette, r api.RunV1, o Options) {
	ew.printf("%s %s  created %s  %d ms\n", p.paint(p.title, "run"), r.ID, r.CreatedAt, r.DurationMS)
	if r.Result != nil {
		res := *r.Result
		res.RunID = ""
		textResult(ew, p, res, o)
	}
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, x := range v {
		s[i] = fmt.Sprint(x)
	}
	return strings.Join(s, " ")
}
