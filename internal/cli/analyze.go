package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trustlens/trustlens/internal/app"
	"github.com/trustlens/trustlens/internal/assessor"
	"github.com/trustlens/trustlens/internal/history"
	"github.com/trustlens/trustlens/internal/logging"
)

type analyzeOptions struct {
	json       bool
	explain    bool
	failOnHigh bool
}

func (r *root) newAnalyzeCommand() *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze <url>...",
		Short: "Analyse one or more URLs and print their verdicts",
		Long: `Analyze fetches each URL, scores it and stores the report in the configured
history backend. URLs without a scheme get https://.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, r.newLogger(cfg), cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "print reports as JSON lines")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "print the evidence behind each score")
	cmd.Flags().BoolVar(&opts.failOnHigh, "fail-on-high", false, "exit non-zero when any URL is HIGH risk")
	return cmd
}

// errHighRisk is returned with --fail-on-high so scripts can gate on it.
var errHighRisk = fmt.Errorf("one or more urls are %s risk", assessor.RiskHigh)

func runAnalyze(ctx context.Context, cfg *app.Config, logger logging.Logger, out io.Writer, urls []string, opts analyzeOptions) error {
	svc, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("closing service", logging.Err(err))
		}
	}()

	var reports []*history.Report
	var failed int
	for _, u := range urls {
		report, err := svc.Analyze(ctx, u)
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: %v\n", u, err)
			continue
		}
		reports = append(reports, report)
	}

	if opts.json {
		enc := json.NewEncoder(out)
		for _, report := range reports {
			if err := enc.Encode(report); err != nil {
				return err
			}
		}
	} else if len(reports) > 0 {
		if err := printReports(out, reports, opts.explain); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d urls could not be analysed", failed, len(urls))
	}
	if opts.failOnHigh {
		for _, report := range reports {
			if report.Result.RiskTier == assessor.RiskHigh {
				return errHighRisk
			}
		}
	}
	return nil
}

func printReports(out io.Writer, reports []*history.Report, explain bool) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "URL\tSCORE\tRISK\tBEHAVIOUR\tTEXT\tIMAGE\tMATCHES\tDEGRADED")
	for _, r := range reports {
		res := r.Result
		fmt.Fprintf(tw, "%s\t%.2f\t%s\t%.2f\t%.2f\t%.2f\t%d\t%v\n",
			r.URL, res.FinalScore, res.RiskTier,
			res.ComponentScores.Behaviour, res.ComponentScores.Text, res.ComponentScores.Image,
			res.MatchCount, res.Degraded)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !explain {
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(out, "\n%s\n", r.URL)
		for _, ev := range r.Result.Evidence {
			fmt.Fprintf(out, "  %-28s %+7.2f  %s", ev.RuleID, ev.Contribution, ev.Description)
			if ev.Value != "" {
				fmt.Fprintf(out, " (%s)", ev.Value)
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}
