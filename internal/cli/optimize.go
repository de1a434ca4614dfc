package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"fusionsite-core/fasta"
	"fusionsite-core/fusion"

	"fusionsite/internal/app"
	"fusionsite/pkg/api"
)

type optimizeFlags struct {
	sequence    string
	id          string
	requestFile string

	enzyme    string
	fragments int
	algorithm string
	weights   []float64
	preset    string

	circular       bool
	minFragment    int
	maxFragment    int
	minEndDistance int
	minFidelity    float64

	coding  bool
	frame   int
	domains []string
	scar    string

	candidates  []int
	domesticate bool
	mandatory   []int
	effective   int
	seed        int64
	save        bool

	infeasibleExit int
}

func (r *runner) optimizeCmd() *cobra.Command {
	var f optimizeFlags
	cmd := &cobra.Command{
		Use:   "optimize [FASTA|-]",
		Short: "Choose junction positions for a sequence",
		Long: `Choose fragment boundaries for a Golden Gate assembly.

The sequence comes from a FASTA file (or '-' for stdin), from --sequence,
or from a request file given with --request. Flags override fields of the
request file. A FASTA header containing "circular" selects circular
topology unless --circular is given explicitly.

Exit status is 0 for a feasible design, --infeasible-exit-code (default 1)
when no junction set satisfies every constraint, 2 for invalid input and
130 when interrupted.`,
		Example: `  fusionsite optimize -e BsaI -n 4 insert.fa
  fusionsite optimize -e BsmBI -n 6 --circular --algorithm dp_validated plasmid.fa
  fusionsite optimize -s ACGT... -e BsaI -n 3 --domesticate -o json
  fusionsite optimize --request run.yaml --seed 7 --save`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request(cmd, args, r.cfg.Constraints(false))
			if err != nil {
				return err
			}
			out, err := r.app.Optimize(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := r.write(out); err != nil {
				return err
			}
			if !out.Feasible {
				r.code = f.infeasibleExit
			}
			return nil
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func (f *optimizeFlags) register(fl *pflag.FlagSet) {
	fl.StringVarP(&f.sequence, "sequence", "s", "", "sequence given inline")
	fl.StringVar(&f.id, "id", "", "FASTA record to use (default: the first)")
	fl.StringVar(&f.requestFile, "request", "", "YAML or JSON request file")

	fl.StringVarP(&f.enzyme, "enzyme", "e", "", "Type IIS enzyme (see 'fusionsite enzymes')")
	fl.IntVarP(&f.fragments, "fragments", "n", 0, "number of fragments")
	fl.StringVarP(&f.algorithm, "algorithm", "a", "", "auto | branch_bound | dp_validated | monte_carlo (default from settings)")
	fl.Float64SliceVar(&f.weights, "weights", nil, "five weights: overhang,fwd-primer,rev-primer,risk,biology")
	fl.StringVar(&f.preset, "preset", "", "weight preset: balanced | fidelity | primer | coding")

	fl.BoolVar(&f.circular, "circular", false, "treat the sequence as circular")
	fl.IntVar(&f.minFragment, "min-fragment", 0, "minimum fragment length")
	fl.IntVar(&f.maxFragment, "max-fragment", 0, "maximum fragment length")
	fl.IntVar(&f.minEndDistance, "min-end-distance", 0, "minimum junction distance from linear ends")
	fl.Float64Var(&f.minFidelity, "min-fidelity", 0, "minimum set fidelity in [0,1]")

	fl.BoolVar(&f.coding, "coding", false, "sequence is a coding sequence")
	fl.IntVar(&f.frame, "frame", 0, "coding frame offset (0, 1 or 2)")
	fl.StringArrayVar(&f.domains, "domain", nil, "protein domain as [name:]start-end, a nucleotide range (repeatable)")
	fl.StringVar(&f.scar, "scar", "", "scar preference: coding | linker | nonCoding")

	fl.IntSliceVar(&f.candidates, "candidates", nil, "restrict the search to these junction positions")
	fl.BoolVar(&f.domesticate, "domesticate", false, "place junctions over internal enzyme sites")
	fl.IntSliceVar(&f.mandatory, "mandatory", nil, "explicit site positions to domesticate")
	fl.IntVar(&f.effective, "effective-fragments", 0, "fragment count after domestication")
	fl.Int64Var(&f.seed, "seed", 0, "Monte Carlo seed (default: drawn from the clock)")
	fl.BoolVar(&f.save, "save", false, "save the run to the history store")

	fl.IntVar(&f.infeasibleExit, "infeasible-exit-code", app.ExitInfeasible, "exit status for an infeasible design")
}

// request merges the request file, the sequence source and the flags.
func (f *optimizeFlags) request(cmd *cobra.Command, args []string, def fusion.Constraints) (api.OptimizeRequestV1, error) {
	var req api.OptimizeRequestV1
	if f.requestFile != "" {
		var err error
		if req, err = readRequest(f.requestFile); err != nil {
			return req, err
		}
	}
	changed := cmd.Flags().Changed

	circular := req.Circular || (req.Constraints != nil && req.Constraints.Circular)
	switch {
	case len(args) == 1:
		if changed("sequence") {
			return req, usageError{fmt.Errorf("give either a FASTA file or --sequence, not both")}
		}
		rec, err := fasta.First(cmd.Context(), args[0], f.id)
		if err != nil {
			if cmd.Context().Err() != nil {
				return req, err
			}
			return req, fusion.NewInputError("sequence", "%v", err)
		}
		req.Sequence = rec.Seq
		if rec.Circular {
			circular = true
		}
	case changed("sequence"):
		req.Sequence = f.sequence
	case req.Sequence == "":
		return req, usageError{fmt.Errorf("no sequence: give a FASTA file, --sequence or --request")}
	}
	if changed("circular") {
		circular = f.circular
	}
	req.Circular = circular

	if changed("enzyme") {
		req.Enzyme = f.enzyme
	}
	if changed("fragments") {
		req.NumFragments = f.fragments
	}
	if req.Enzyme == "" || req.NumFragments == 0 {
		return req, usageError{fmt.Errorf("--enzyme and --fragments are required")}
	}
	if changed("algorithm") {
		req.Algorithm = f.algorithm
	}
	if changed("weights") {
		req.Weights = f.weights
	}
	if changed("preset") {
		req.WeightPreset = f.preset
	}

	if req.Constraints != nil || circular || changed("min-fragment") || changed("max-fragment") ||
		changed("min-end-distance") || changed("min-fidelity") {
		c := f.constraints(cmd, req.Constraints, def)
		c.Circular = circular
		req.Constraints = &c
	}

	if changed("coding") || changed("frame") || changed("domain") || changed("scar") {
		bio := copyBio(req.BioContext)
		if changed("coding") {
			bio.IsCodingSequence = f.coding
		}
		if changed("frame") {
			bio.CodingFrame = f.frame
		}
		if changed("scar") {
			bio.ScarPreference = f.scar
		}
		for _, d := range f.domains {
			pd, err := parseDomain(d)
			if err != nil {
				return req, usageError{err}
			}
			bio.ProteinDomains = append(bio.ProteinDomains, pd)
		}
		req.BioContext = &bio
	}

	if changed("candidates") {
		req.ManualCandidates = f.candidates
	}
	if changed("domesticate") || changed("mandatory") {
		ad := api.AutoDomesticationV1{}
		if req.AutoDomestication != nil {
			ad = *req.AutoDomestication
		}
		if changed("domesticate") {
			ad.Enabled = f.domesticate
		}
		if changed("mandatory") {
			ad.Enabled = true
			ad.Sites = f.mandatory
		}
		req.AutoDomestication = &ad
	}
	if changed("effective-fragments") {
		req.EffectiveFragments = f.effective
	}
	if changed("seed") {
		seed := f.seed
		req.Seed = &seed
	}
	if changed("save") {
		req.Save = f.save
	}
	return req, nil
}

// constraints starts from the request file's block, or from the configured
// defaults, and applies the constraint flags that were set.
func (f *optimizeFlags) constraints(cmd *cobra.Command, base *api.ConstraintsV1, d fusion.Constraints) api.ConstraintsV1 {
	var c api.ConstraintsV1
	if base != nil {
		c = *base
	} else {
		c = api.ConstraintsV1{
			MinFragmentSize:     d.MinFragmentSize,
			MaxFragmentSize:     d.MaxFragmentSize,
			MinDistanceFromEnds: d.MinDistanceFromEnds,
			MinSetFidelity:      d.MinSetFidelity,
		}
	}
	changed := cmd.Flags().Changed
	if changed("min-fragment") {
		c.MinFragmentSize = f.minFragment
	}
	if changed("max-fragment") {
		c.MaxFragmentSize = f.maxFragment
	}
	if changed("min-end-distance") {
		c.MinDistanceFromEnds = f.minEndDistance
	}
	if changed("min-fidelity") {
		c.MinSetFidelity = f.minFidelity
	}
	return c
}

// copyBio copies b, or returns an empty context for nil.
func copyBio(b *api.BioContextV1) api.BioContextV1 {
	if b == nil {
		return api.BioContextV1{}
	}
	out := *b
	out.ProteinDomains = append([]api.ProteinDomainV1(nil), b.ProteinDomains...)
	return out
}

// parseDomain reads "[name:]start-end" as a half-open nucleotide range.
func parseDomain(s string) (api.ProteinDomainV1, error) {
	var d api.ProteinDomainV1
	span := s
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		d.Name, span = s[:i], s[i+1:]
	}
	lo, hi, ok := strings.Cut(span, "-")
	if !ok {
		return d, fmt.Errorf("--domain %q: want [name:]start-end", s)
	}
	var err error
	if d.Start, err = strconv.Atoi(strings.TrimSpace(lo)); err != nil {
		return d, fmt.Errorf("--domain %q: bad start: %v", s, err)
	}
	if d.End, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
		return d, fmt.Errorf("--domain %q: bad end: %v", s, err)
	}
	return d, nil
}

// readRequest loads a request file. YAML is a superset of the JSON we emit,
// so one decoder serves both.
func readRequest(path string) (api.OptimizeRequestV1, error) {
	var req api.OptimizeRequestV1
	b, err := os.ReadFile(path)
	if err != nil {
		return req, usageError{fmt.Errorf("request file: %w", err)}
	}
	if err := yaml.Unmarshal(b, &req); err != nil {
		return req, usageError{fmt.Errorf("request file %s: %w", path, err)}
	}
	return req, nil
}
