package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fusionsite-core/fasta"
	"fusionsite-core/fusion"

	"fusionsite/internal/app"
	"fusionsite/internal/catalog"
	"fusionsite/internal/server"
	"fusionsite/internal/version"
	"fusionsite/pkg/api"
)

// readSequence returns the sequence given inline or the first matching
// record of path.
func readSequence(cmd *cobra.Command, path, id, inline string) (string, error) {
	switch {
	case path != "" && inline != "":
		return "", usageError{fmt.Errorf("give either a FASTA file or --sequence, not both")}
	case inline != "":
		return inline, nil
	case path == "":
		return "", usageError{fmt.Errorf("no sequence: give a FASTA file or --sequence")}
	}
	rec, err := fasta.First(cmd.Context(), path, id)
	if err != nil {
		if cmd.Context().Err() != nil {
			return "", err
		}
		return "", fusion.NewInputError("sequence", "%v", err)
	}
	return rec.Seq, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (r *runner) domesticateCmd() *cobra.Command {
	var enzyme, sequence, id string
	cmd := &cobra.Command{
		Use:   "domesticate [FASTA|-]",
		Short: "Report internal enzyme sites and the junctions that remove them",
		Example: `  fusionsite domesticate -e BsaI insert.fa
  fusionsite domesticate -e BsmBI -s ACGT... -o yaml`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enzyme == "" {
				return usageError{fmt.Errorf("--enzyme is required")}
			}
			seq, err := readSequence(cmd, firstArg(args), id, sequence)
			if err != nil {
				return err
			}
			out, err := r.app.Domestication(api.DomesticationRequestV1{Sequence: seq, Enzyme: enzyme})
			if err != nil {
				return err
			}
			return r.write(out)
		},
	}
	cmd.Flags().StringVarP(&enzyme, "enzyme", "e", "", "Type IIS enzyme")
	cmd.Flags().StringVarP(&sequence, "sequence", "s", "", "sequence given inline")
	cmd.Flags().StringVar(&id, "id", "", "FASTA record to use (default: the first)")
	return cmd
}

func (r *runner) enzymesCmd() *cobra.Command {
	var (
		survey, id string
		export     bool
	)
	cmd := &cobra.Command{
		Use:   "enzymes",
		Short: "List the enzyme catalog, or count each enzyme's sites in a sequence",
		Example: `  fusionsite enzymes
  fusionsite enzymes --catalog lab-enzymes.yaml -o yaml
  fusionsite enzymes --export > catalog.yaml
  fusionsite enzymes --survey insert.fa`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case export && survey != "":
				return usageError{fmt.Errorf("--export and --survey are exclusive")}
			case export:
				// catalog files are their own format, independent of --format
				if err := catalog.Write(r.stdout, r.app.Engine.Enzymes()); err != nil {
					return fmt.Errorf("%w: %w", errWrite, err)
				}
				return nil
			case survey == "":
				return r.write(r.app.Enzymes())
			}
			seq, err := readSequence(cmd, survey, id, "")
			if err != nil {
				return err
			}
			counts, err := r.app.Survey(seq)
			if err != nil {
				return err
			}
			return r.write(counts)
		},
	}
	cmd.Flags().StringVar(&survey, "survey", "", "FASTA file to survey for recognition sites")
	cmd.Flags().StringVar(&id, "id", "", "FASTA record to survey (default: the first)")
	cmd.Flags().BoolVar(&export, "export", false, "print the merged catalog as a --catalog file")
	return cmd
}

func (r *runner) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the v1 JSON API over HTTP",
		Long: `Serve the v1 JSON API until interrupted.

  GET  /healthz
  GET  /v1/enzymes
  POST /v1/survey
  POST /v1/domestication
  POST /v1/optimize
  GET  /v1/runs
  GET  /v1/runs/{id}`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.New(r.app).ListenAndServe(cmd.Context(), r.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	r.bind(cmd.Flags(), map[string]string{"server.addr": "addr"})
	return cmd
}

func (r *runner) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse saved runs (needs --store)",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if r.app.Store == nil {
				return app.ErrNoStore
			}
			if limit < 0 {
				return usageError{fmt.Errorf("--limit must be ≥ 0")}
			}
			runs, err := r.app.Store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return r.write(runs)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum runs to list")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one saved run with its request and result",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if r.app.Store == nil {
				return app.ErrNoStore
			}
			run, err := r.app.Store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return r.write(run)
		},
	}
	cmd.AddCommand(list, show)
	return cmd
}

func (r *runner) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "fusionsite version %s\n", version.Version)
			return err
		},
	}
}
