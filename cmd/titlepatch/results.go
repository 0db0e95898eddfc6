package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/pkg/types"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "results",
		Short: "List every result code and its message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResults()
		},
	})
}

type resultRow struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func runResults() error {
	all := types.AllResults()
	if jsonOut {
		rows := make([]resultRow, 0, len(all))
		for _, r := range all {
			rows = append(rows, resultRow{Code: int(r), Message: types.ErrorMessage(r)})
		}
		return printJSON(rows)
	}
	for _, r := range all {
		printInfo("%3d  %s\n", int(r), types.ErrorMessage(r))
	}
	return nil
}
