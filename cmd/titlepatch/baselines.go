package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/title/baseline"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "baselines",
		Short: "Print the active baselines as YAML",
		Long: `The baselines command prints the baseline and coldboot tables in the
format --baselines reads. Redirect it to a file to start a custom table.

Example:
  titlepatch baselines > baselines.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBaselines()
		},
	})
}

func runBaselines() error {
	reg, table, err := loadTables()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(struct {
			Titles   []baseline.Record   `json:"titles"`
			Coldboot []baseline.Coldboot `json:"coldboot"`
		}{reg.Records(), table.Entries()})
	}
	out, err := baseline.FileFrom(reg, table).Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
