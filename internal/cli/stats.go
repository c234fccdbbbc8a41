package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

// statsCmd prints document and chunk totals from the manifest.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show manifest totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := buildDeps(false)
		if err != nil {
			return err
		}
		defer deps.Close()

		totals, err := deps.Manifest.Totals(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(totals)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
