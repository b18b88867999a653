// Package cli builds the trustlens command tree: serve, analyze and version.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trustlens/trustlens/internal/app"
	"github.com/trustlens/trustlens/internal/logging"
)

// Options are the process-level inputs of the command tree.
type Options struct {
	Version string
	Out     io.Writer
	Err     io.Writer
}

type root struct {
	opts    Options
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand returns the trustlens command with every subcommand attached.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	r := &root{opts: opts, v: NewViper()}

	cmd := &cobra.Command{
		Use:   "trustlens",
		Short: "Score how trustworthy a URL looks",
		Long: `trustlens fuses three independent signals into one verdict: URL structure
heuristics, a text classifier over the page content and the provenance of the
page's images. Scores run from 0 (untrustworthy) to 100 and map onto LOW,
MEDIUM or HIGH risk.`,
		SilenceUsage: true,
	}
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.Err)

	flags := cmd.PersistentFlags()
	flags.StringVar(&r.cfgFile, "config", "", "config file (default: ./trustlens.yaml or ~/.config/trustlens/trustlens.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("history-driver", "", "history backend: memory, sqlite or postgres")
	_ = r.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = r.v.BindPFlag(joinKey("history", "driver"), flags.Lookup("history-driver"))

	cmd.AddCommand(
		r.newServeCommand(),
		r.newAnalyzeCommand(),
		r.newVersionCommand(),
	)
	return cmd
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute(version string) int {
	if err := NewRootCommand(Options{Version: version}).Execute(); err != nil {
		return 1
	}
	return 0
}

func (r *root) loadConfig() (*app.Config, error) {
	return LoadConfig(r.v, r.cfgFile)
}

func (r *root) newLogger(cfg *app.Config) logging.Logger {
	return logging.NewLogrusLogger(cfg.LogLevel, r.opts.Err)
}
