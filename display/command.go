// Package display decides between human and JSON command output.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// JSONEnv forces JSON output for every command that supports it.
const JSONEnv = "FUNDLINK_JSON"

// ShouldOutputJSON reports whether cmd should print JSON. An explicit
// --json flag wins over the environment.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd != nil {
		if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
			v, _ := cmd.Flags().GetBool("json")
			return v
		}
	}
	v, _ := strconv.ParseBool(os.Getenv(JSONEnv))
	return v
}

// OutputJSON writes v as indented JSON followed by a newline.
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
