package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the reference tables in use",
	Long: `The tables command prints the jurisdiction, locality and taxability tables
as YAML, after any reference_file overrides are applied. The output can be
edited and passed back through reference_file with replace_defaults: true.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(false)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(a.tables.Export()); err != nil {
			return fmt.Errorf("failed to encode reference tables: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}
