package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
	"github.com/joshuapare/titlepatch/title/install"
	"github.com/joshuapare/titlepatch/title/locate"
	"github.com/joshuapare/titlepatch/title/verify"
)

var (
	coldbootSet     string
	coldbootRestore bool
)

func init() {
	cmd := newColdbootCmd()
	cmd.Flags().StringVar(&coldbootSet, "set", "", "Boot into this title id")
	cmd.Flags().BoolVar(&coldbootRestore, "restore", false, "Boot into the system menu again")
	cmd.Flags().StringVar(&backupDir, "backup-dir", "titlepatch-backup", "Directory for backups of replaced files")
	cmd.MarkFlagsMutuallyExclusive("set", "restore")
	rootCmd.AddCommand(cmd)
}

func newColdbootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coldboot <mlc-root>",
		Short: "Show or change the title the console boots into",
		Long: `Without flags the coldboot command shows the current boot title. With
--set it points system.xml at a title from the coldboot table; with --restore
it points it back at the system menu of the same region.

Example:
  titlepatch coldboot /mnt/mlc
  titlepatch coldboot /mnt/mlc --set 000500101004E200
  titlepatch coldboot /mnt/mlc --restore`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColdboot(args)
		},
	}
	return cmd
}

func runColdboot(args []string) error {
	loc := locate.New(args[0])
	reg, table, err := loadTables()
	if err != nil {
		return err
	}
	// Best effort: only used to report whether the pointer targets an installed title.
	if _, err := loc.Locate(reg); err != nil && !errors.Is(err, locate.ErrNoTitle) {
		return fmt.Errorf("failed to locate titles: %w", err)
	}
	gate := verify.NewGate(reg, table)

	status, res := gate.ColdbootStatus(loc.ConfigDir())
	if coldbootSet == "" && !coldbootRestore {
		if jsonOut {
			if err := printJSON(struct {
				Status *verify.ColdbootStatus `json:"status,omitempty"`
				Result types.Result           `json:"result"`
			}{statusOrNil(status, res.OK()), res}); err != nil {
				return err
			}
			return checkResult(res)
		}
		if res.OK() {
			name := status.Name
			if !status.Known {
				name = "unknown title"
			}
			printInfo("Current: %s (%s)\n", status.Current, name)
		} else {
			printInfo("%s %s\n", mark(res), res)
		}
		return checkResult(res)
	}

	var target baseline.TitleID
	if coldbootSet != "" {
		if target, err = baseline.ParseTitleID(coldbootSet); err != nil {
			return err
		}
	} else {
		if !res.OK() {
			return reportInstall(installOutput{Result: res})
		}
		menu, ok := table.MenuFor(status.Current)
		if !ok {
			return fmt.Errorf("no system menu for region of %s", status.Current)
		}
		target = menu.TitleID
	}
	printVerbose("Setting coldboot title to %s\n", target)

	in := install.New(gate, backupDir, install.WithFullSync(fullSync))
	report := in.SetColdboot(loc.ConfigDir(), target)
	return reportInstall(installOutput{Coldboot: &report, Result: report.Result})
}

func statusOrNil(st verify.ColdbootStatus, ok bool) *verify.ColdbootStatus {
	if !ok {
		return nil
	}
	return &st
}
