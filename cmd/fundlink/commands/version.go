package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/fundlink/display"
	"github.com/teranos/fundlink/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show fundlink version information",
	Long:  `Display version, build time, commit hash, and platform information for the fundlink binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()

		if display.ShouldOutputJSON(cmd) {
			if err := display.OutputJSON(cmd.OutOrStdout(), info); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting JSON: %v\n", err)
			}
		} else {
			fmt.Println(info.String())
			fmt.Printf("Platform: %s\n", info.Platform)
			fmt.Printf("Go: %s\n", info.GoVersion)
		}
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
