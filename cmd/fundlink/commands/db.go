package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/fundlink/am"
	"github.com/teranos/fundlink/db"
	"github.com/teranos/fundlink/display"
	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/logger"
	"github.com/teranos/fundlink/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Inspect the result database",
	Long: sym.DB + ` db: Inspect the result database

The result database holds the relationship tables of the latest match run
when output.database.driver is set (sqlite3 or postgres).

Examples:
  fundlink db stats               # Show record and match counts
  fundlink db stats --json        # Same, as JSON
  fundlink db migrate             # Create or upgrade the schema`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record and match counts of the stored run",
	RunE:  runDbStats,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE:  runDbMigrate,
}

func init() {
	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbMigrateCmd)
	dbStatsCmd.Flags().Bool("json", false, "Output statistics as JSON")
}

func loadDatabaseConfig() (am.DatabaseConfig, error) {
	cfg, err := am.Load()
	if err != nil {
		return am.DatabaseConfig{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	dbCfg := cfg.Output.Database
	if dbCfg.Driver == "" {
		return dbCfg, errors.WithHint(
			errors.NewInvalidInputError("no result database configured"),
			"set output.database.driver and output.database.dsn, e.g. fundlink am set output.database.driver sqlite3",
		)
	}
	return dbCfg, nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	dbCfg, err := loadDatabaseConfig()
	if err != nil {
		return err
	}

	database, err := db.OpenWithMigrations(dbCfg.Driver, dbCfg.DSN, logger.Logger.Named("db"))
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer database.Close()

	stats, err := db.GetStats(cmd.Context(), database)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), stats)
	}

	fmt.Printf("%s Database Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Driver:    %s\n", dbCfg.Driver)
	if stats.RunID == "" {
		fmt.Println("No run stored yet")
		return nil
	}
	fmt.Printf("Run:       %s\n", stats.RunID)
	fmt.Printf("Created:   %s\n", stats.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Datasets:  %d\n", stats.Datasets)
	fmt.Printf("Semantic:  %t\n", stats.Semantic)
	fmt.Println()

	return pterm.DefaultTable.WithHasHeader().WithData(statsTable(stats)).Render()
}

// statsTable renders one row per relationship table
func statsTable(stats *db.Stats) pterm.TableData {
	data := pterm.TableData{{"Table", "Records", "Matches"}}
	for _, ts := range stats.Tables {
		var parts []string
		for _, c := range db.FlagColumns(ts.Table) {
			parts = append(parts, fmt.Sprintf("%s=%d", c, ts.Matches[c]))
		}
		data = append(data, []string{ts.Table, strconv.Itoa(ts.Records), strings.Join(parts, " ")})
	}
	return data
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	dbCfg, err := loadDatabaseConfig()
	if err != nil {
		return err
	}
	database, err := db.OpenWithMigrations(dbCfg.Driver, dbCfg.DSN, logger.Logger.Named("db"))
	if err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	defer database.Close()

	fmt.Println("✓ Schema is up to date")
	return nil
}
