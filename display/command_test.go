package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "stats"}
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func TestShouldOutputJSON(t *testing.T) {
	t.Setenv(JSONEnv, "")
	assert.False(t, ShouldOutputJSON(nil))
	assert.False(t, ShouldOutputJSON(newCmd()))

	cmd := newCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--json"}))
	assert.True(t, ShouldOutputJSON(cmd))

	t.Setenv(JSONEnv, "true")
	assert.True(t, ShouldOutputJSON(newCmd()))
	assert.True(t, ShouldOutputJSON(&cobra.Command{Use: "bare"}))

	off := newCmd()
	require.NoError(t, off.ParseFlags([]string{"--json=false"}))
	assert.False(t, ShouldOutputJSON(off))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"records": 3}))
	assert.Equal(t, "{\n  \"records\": 3\n}\n", buf.String())

	assert.Error(t, OutputJSON(&buf, func() {}))
}
