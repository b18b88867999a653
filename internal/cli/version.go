package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/oracle"
	"github.com/trustlens/trustlens/internal/webclient"
)

func (r *root) newVersionCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of trustlens",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trustlens %s (scoring %s)\n", r.opts.Version, assessor.DefaultConfig().ScoringVersion)
			if !verbose {
				return
			}
			fmt.Fprintf(out, "webclients:  %s\n", strings.Join(webclient.ListBackends(), ", "))
			fmt.Fprintf(out, "classifiers: %s\n", strings.Join(oracle.ListClassifiers(), ", "))
			fmt.Fprintf(out, "identities:  %s\n", strings.Join(oracle.ListIdentities(), ", "))
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list the registered webclient and oracle backends")
	return cmd
}
