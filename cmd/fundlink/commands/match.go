package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/fundlink/am"
	"github.com/teranos/fundlink/display"
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/ixgest"
	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/pipeline"
	"github.com/teranos/fundlink/rules"
	"github.com/teranos/fundlink/sym"
)

// MatchCmd evaluates every dataset against every funding entity
var MatchCmd = &cobra.Command{
	Use:   "match",
	Short: sym.AX + " Relate datasets to programs, projects and grants",
	Long: sym.AX + ` match: Relate datasets to programs, projects and grants

Reads the four input tables, evaluates every dataset against every
program, project and grant, and writes one relationship table per kind.

Flags override the corresponding am.toml settings.

Examples:
  fundlink match
  fundlink match --datasets data/datasets.csv --programs data/programs.csv
  fundlink match --semantic --workers 8 --format csv --format xlsx
  fundlink match --watch --metrics-file /var/lib/node_exporter/fundlink.prom`,
	RunE: runMatch,
}

var (
	matchDatasets    string
	matchPrograms    string
	matchProjects    string
	matchGrants      string
	matchOut         string
	matchFormats     []string
	matchWorkers     int
	matchSemantic    bool
	matchThreshold   float64
	matchAccumulate  bool
	matchMetricsFile string
	matchWatch       bool
)

func init() {
	f := MatchCmd.Flags()
	f.StringVar(&matchDatasets, "datasets", "", "Dataset table")
	f.StringVar(&matchPrograms, "programs", "", "Program table")
	f.StringVar(&matchProjects, "projects", "", "Project table")
	f.StringVar(&matchGrants, "grants", "", "Grant table")
	f.StringVarP(&matchOut, "out", "o", "", "Output directory")
	f.StringSliceVarP(&matchFormats, "format", "f", nil, "Output formats: csv, xlsx, json")
	f.IntVarP(&matchWorkers, "workers", "w", 0, "Datasets evaluated concurrently")
	f.BoolVar(&matchSemantic, "semantic", false, "Enable description similarity")
	f.Float64Var(&matchThreshold, "threshold", 0, "Cosine similarity a description match must exceed")
	f.BoolVar(&matchAccumulate, "accumulate", false, "Keep every matching funding pair instead of the last one")
	f.StringVar(&matchMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each pass")
	f.BoolVar(&matchWatch, "watch", false, "Re-run whenever an input table changes")
	f.Bool("json", false, "Print the pass summary as JSON")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	applyMatchFlags(cmd, cfg)

	runner, err := pipeline.New(cfg, pipeline.Options{Logger: logger.Logger.Named("fundlink")})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pass := func(ctx context.Context) error {
		out, err := runner.Run(ctx)
		if err != nil {
			return err
		}
		return printOutcome(cmd, out)
	}

	if err := pass(ctx); err != nil {
		if !matchWatch {
			return err
		}
		pterm.Error.Printfln("Pass failed: %v", err)
	}
	if !matchWatch {
		return nil
	}

	watcher, err := ixgest.NewWatcher(runner.Paths().Files(), ixgest.DefaultDebounce, logger.Logger.Named("watch"))
	if err != nil {
		return errors.Wrap(err, "failed to watch inputs")
	}
	if !display.ShouldOutputJSON(cmd) {
		pterm.Info.Println("Watching input tables, press Ctrl+C to stop")
	}
	return watcher.Run(ctx, pass)
}

// applyMatchFlags copies explicitly set flags over the loaded configuration
func applyMatchFlags(cmd *cobra.Command, cfg *am.Config) {
	changed := cmd.Flags().Changed
	if changed("datasets") {
		cfg.Input.Datasets = matchDatasets
	}
	if changed("programs") {
		cfg.Input.Programs = matchPrograms
	}
	if changed("projects") {
		cfg.Input.Projects = matchProjects
	}
	if changed("grants") {
		cfg.Input.Grants = matchGrants
	}
	if changed("out") {
		cfg.Output.Dir = matchOut
	}
	if changed("format") {
		cfg.Output.Formats = matchFormats
	}
	if changed("workers") {
		cfg.Match.Workers = matchWorkers
	}
	if changed("semantic") {
		cfg.Semantic.Enabled = matchSemantic
	}
	if changed("threshold") {
		cfg.Semantic.Threshold = matchThreshold
	}
	if changed("accumulate") {
		cfg.Match.FundingAccumulation = string(rules.LastMatchWins)
		if matchAccumulate {
			cfg.Match.FundingAccumulation = string(rules.AccumulateAll)
		}
	}
	if changed("metrics-file") {
		cfg.Output.MetricsFile = matchMetricsFile
	}
}

func printOutcome(cmd *cobra.Command, out *pipeline.Outcome) error {
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), newOutcomeReport(out))
	}

	pterm.DefaultHeader.WithFullWidth().Printf("%s Relationships for %d datasets", sym.AX, out.Summary.Datasets)
	pterm.Println()
	if err := pterm.DefaultTable.WithHasHeader().WithData(summaryTable(out.Summary)).Render(); err != nil {
		return err
	}
	pterm.Println()
	for _, f := range out.Files {
		pterm.Info.Printfln("Wrote %s", f)
	}
	if out.Stored {
		pterm.Info.Printfln("Stored run %s", out.RunID)
	}
	pterm.Success.Printfln("Pass %s completed in %s", out.RunID, out.Duration.Round(time.Millisecond))
	return nil
}
