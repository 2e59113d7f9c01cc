package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/fundlink/cmd/fundlink/commands"
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fundlink",
	Short: "fundlink - Relate datasets to funding programs, projects and grants",
	Long: `fundlink - Relate datasets to the funding entities that produced them.

fundlink reads a dataset catalogue plus program, project and grant tables,
evaluates every dataset against every funding entity and writes one
relationship table per entity kind.

Available commands:
  match   - Evaluate relationships and write the output tables
  am      - Manage fundlink configuration ("I am")
  db      - Inspect stored relationship runs
  version - Show version information

Examples:
  fundlink match                          # Use inputs from am.toml
  fundlink match --semantic --format csv  # Enable description similarity
  fundlink match --watch                  # Re-run when an input changes
  fundlink am show                        # Show current configuration
  fundlink db stats                       # Summarize the stored run`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("log-json")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	rootCmd.AddCommand(commands.MatchCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
