// Package cli is the fusionsite command tree. Every invocation builds a
// fresh cobra tree and viper instance, so RunContext is safe to call
// repeatedly from tests.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"fusionsite/internal/app"
	"fusionsite/internal/config"
	"fusionsite/internal/logging"
	"fusionsite/internal/version"
	"fusionsite/internal/writers"
)

// usageError marks bad flags, unknown commands and wrong argument counts.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// runner carries the state of one invocation.
type runner struct {
	stdout *bufio.Writer
	stderr io.Writer
	v      *viper.Viper

	configPath string
	cfg        config.Config
	log        *log.Logger
	app        *app.App

	// code overrides the exit status of a command that otherwise succeeded.
	code int
}

// RunContext parses argv, runs the selected command and returns the
// process exit code.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	r := &runner{
		stdout: bufio.NewWriter(stdout),
		stderr: stderr,
		v:      config.New(),
	}
	root := r.rootCmd()
	root.SetArgs(argv)
	root.SetOut(r.stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if r.app != nil {
		if cerr := r.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	flushErr := r.stdout.Flush()

	switch {
	case err == nil:
	case writers.IsBrokenPipe(err):
		return app.ExitOK
	case isUsage(err):
		_, _ = fmt.Fprintf(stderr, "fusionsite: %v\n", err)
		_, _ = fmt.Fprintln(stderr, "Run 'fusionsite --help' for usage.")
		return app.ExitInput
	default:
		_, _ = fmt.Fprintf(stderr, "fusionsite: %v\n", err)
		if errors.Is(err, errWrite) {
			return app.ExitOutput
		}
		return app.ExitCode(err)
	}
	if flushErr != nil {
		if writers.IsBrokenPipe(flushErr) {
			return app.ExitOK
		}
		_, _ = fmt.Fprintf(stderr, "fusionsite: %v\n", flushErr)
		return app.ExitOutput
	}
	return r.code
}

func isUsage(err error) bool {
	var ue usageError
	if errors.As(err, &ue) {
		return true
	}
	return strings.HasPrefix(err.Error(), "unknown command") ||
		strings.HasPrefix(err.Error(), "unknown flag") ||
		strings.HasPrefix(err.Error(), "unknown shorthand flag")
}

// usageArgs wraps a positional-argument check so its failures exit 2.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func (r *runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fusionsite",
		Short: "Golden Gate fusion-site designer",
		Long: `fusionsite chooses junction positions for Golden Gate assembly.

It splits a DNA sequence into fragments whose 4-base overhangs ligate
faithfully, scores every candidate junction, and reports internal
recognition sites of the assembly enzyme that need domestication.

Settings come from built-in defaults, an optional YAML file (--config),
FUSIONSITE_* environment variables and flags, in increasing precedence.`,
		Version:           version.Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: r.setup,
	}
	root.SetVersionTemplate("fusionsite version {{.Version}}\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVar(&r.configPath, "config", "", "YAML settings file")
	pf.String("log-level", "info", "log level: debug | info | warn | error")
	pf.StringP("format", "o", "text", "output format: "+strings.Join(writers.Formats(), " | "))
	pf.Bool("color", false, "colour text output")
	pf.String("store", "", "SQLite run-history database (empty disables history)")
	pf.StringSlice("catalog", nil, "extra enzyme catalog YAML file (repeatable)")
	r.bind(pf, map[string]string{
		"log.level":     "log-level",
		"output.format": "format",
		"output.color":  "color",
		"store.path":    "store",
		"catalogs":      "catalog",
	})

	root.AddCommand(
		r.optimizeCmd(),
		r.domesticateCmd(),
		r.enzymesCmd(),
		r.serveCmd(),
		r.historyCmd(),
		r.versionCmd(),
	)
	return root
}

// bind ties viper keys to flags; a flag wins only when set on the command line.
func (r *runner) bind(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = r.v.BindPFlag(key, fs.Lookup(name))
	}
}

// setup loads settings and builds the App before any command runs.
func (r *runner) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(r.v, r.configPath)
	if err != nil {
		return usageError{err}
	}
	r.cfg = cfg
	r.log = logging.New(r.stderr, cfg.Log.Level)
	a, err := app.New(cfg, r.log)
	if err != nil {
		return err
	}
	r.app = a
	return nil
}

// errWrite tags failures of the result writer.
var errWrite = errors.New("write output")

func (r *runner) write(payload any) error {
	err := writers.Write(r.cfg.Output.Format, r.stdout, payload, writers.Options{Color: r.cfg.Output.Color})
	if err == nil || writers.IsBrokenPipe(err) {
		return err
	}
	return fmt.Errorf("%w: %w", errWrite, err)
}
