package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/fundlink/am"
	"github.com/teranos/fundlink/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage fundlink configuration",
	Long: sym.AM + ` am: Manage fundlink configuration ("I am")

Display and manage fundlink configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (FUNDLINK_* prefix)
3. Project config (./am.toml, searched up from the working directory)
4. User config (~/.fundlink/am.toml)
5. System config (/etc/fundlink/am.toml)
6. Default values

Examples:
  fundlink am show                          # Show current configuration
  fundlink am show --format json            # Show configuration in JSON format
  fundlink am get semantic.threshold        # Get specific config value
  fundlink am set match.workers 8           # Update ./am.toml
  fundlink am init                          # Write defaults to ./am.toml
  fundlink am validate                      # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current fundlink configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., semantic.threshold, output.formats)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in the project config",
	Long: `Set a configuration value using dot notation. The value is written to
./am.toml (or --file) and the previous file is kept as a backup.

Comma separated values become lists: fundlink am set output.formats csv,xlsx`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration",
	Long:  "Write the built-in defaults to ./am.toml (or --file) as a starting point",
	RunE:  runAmInit,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current fundlink configuration is valid",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and the source of every setting.

Secrets such as semantic.api_key and output.database.dsn are masked.`,
	RunE: runAmWhere,
}

var (
	configFormat string
	configFile   string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amSetCmd.Flags().StringVar(&configFile, "file", am.ProjectConfigName, "Config file to update")
	amInitCmd.Flags().StringVar(&configFile, "file", am.ProjectConfigName, "Config file to write")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	masked := *cfg
	if masked.Semantic.APIKey != "" {
		masked.Semantic.APIKey = maskedValue
	}
	if masked.Output.Database.DSN != "" {
		masked.Output.Database.DSN = maskedValue
	}

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(masked, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(masked)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		fmt.Printf("# fundlink configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(masked)
		if err != nil {
			return fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		fmt.Printf("# fundlink configuration\n%s", string(data))

	default:
		return fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

const maskedValue = "********"

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	for _, s := range am.GetConfigIntrospection() {
		if s.Key == key {
			fmt.Println(s.Value)
			return nil
		}
	}
	return fmt.Errorf("configuration key %q not found", key)
}

func runAmSet(cmd *cobra.Command, args []string) error {
	if err := am.SetValue(configFile, args[0], args[1]); err != nil {
		return err
	}
	am.Reset()
	fmt.Printf("✓ %s updated in %s\n", args[0], configFile)
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configFile)
	}
	if err := am.WriteConfig(configFile, am.Defaults()); err != nil {
		return err
	}
	abs, _ := filepath.Abs(configFile)
	fmt.Printf("✓ Wrote default configuration to %s\n", abs)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	settings := am.GetConfigIntrospection()

	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  1. [DEFAULT]  Built-in defaults")
	fmt.Println("  2. [SYSTEM]   /etc/fundlink/am.toml")
	fmt.Printf("  3. [USER]     %s\n", am.UserConfigPath())
	fmt.Println("  4. [PROJECT]  ./am.toml (searches up directories)")
	fmt.Println("  5. [ENV]      FUNDLINK_* environment variables")
	fmt.Println()

	sourceOrder := []am.ConfigSource{
		am.SourceDefault,
		am.SourceSystem,
		am.SourceUser,
		am.SourceProject,
		am.SourceEnvironment,
	}

	fmt.Println("Active configuration:")
	for _, source := range sourceOrder {
		var group []am.SettingInfo
		for _, s := range settings {
			if s.Source == source {
				group = append(group, s)
			}
		}
		if len(group) == 0 {
			continue
		}

		switch source {
		case am.SourceDefault:
			fmt.Printf("\n%s: %d settings\n", source, len(group))
		case am.SourceEnvironment:
			fmt.Printf("\n%s: %d settings from environment variables\n", source, len(group))
		default:
			fmt.Printf("\n%s: %d settings from %s\n", source, len(group), group[0].SourcePath)
		}
		for _, s := range group {
			if source == am.SourceEnvironment {
				fmt.Printf("  %-32s = %v  (%s)\n", s.Key, s.Value, s.SourcePath)
			} else {
				fmt.Printf("  %-32s = %v\n", s.Key, s.Value)
			}
		}
	}
	return nil
}
