package types

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "default", args: []string{"child"}, want: false},
		{name: "flag set", args: []string{"--json", "child"}, want: true},
		{name: "flag after subcommand", args: []string{"child", "--json"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			root := &cobra.Command{Use: "root"}
			root.PersistentFlags().Bool("json", false, "")
			root.AddCommand(&cobra.Command{
				Use: "child",
				Run: func(cmd *cobra.Command, _ []string) { got = JSONOutput(cmd) },
			})
			root.SetArgs(tt.args)

			require.NoError(t, root.Execute())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApp_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	_, err := App(cmd)
	assert.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"imported": 2}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 2, got["imported"])
}
