package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/install"
	"github.com/joshuapare/titlepatch/title/locate"
	"github.com/joshuapare/titlepatch/title/verify"
)

func init() {
	cmd := newUninstallCmd()
	cmd.Flags().StringVar(&backupDir, "backup-dir", "titlepatch-backup", "Directory install kept its backups in")
	cmd.Flags().BoolVar(&fullSync, "full-sync", false, "Use the strongest flush the platform offers")
	rootCmd.AddCommand(cmd)
}

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall <mlc-root>",
		Short: "Put back the files install replaced",
		Long: `The uninstall command restores the original app descriptor and
filesystem table of the patched title from the backup directory, then removes
the payload install copied in. A backup that is itself patched is refused.

When the console boots straight into the title, the boot pointer is moved
back to the system menu first.

Example:
  titlepatch uninstall /mnt/mlc --backup-dir ./backup`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(args)
		},
	}
	return cmd
}

func runUninstall(args []string) error {
	loc := locate.New(args[0])
	reg, table, err := loadTables()
	if err != nil {
		return err
	}

	rec, err := loc.Locate(reg)
	if err != nil {
		if errors.Is(err, locate.ErrNoTitle) {
			return reportUninstall(installOutput{Result: types.NoCompatibleAppInstalled})
		}
		return fmt.Errorf("failed to locate titles: %w", err)
	}

	gate := verify.NewGate(reg, table)
	in := install.New(gate, backupDir, install.WithFullSync(fullSync))
	var out installOutput

	status, res := gate.ColdbootStatus(loc.ConfigDir())
	if res.OK() && status.Current == rec.TitleID {
		menu, ok := table.MenuFor(status.Current)
		if !ok {
			return fmt.Errorf("no system menu for region of %s", status.Current)
		}
		printVerbose("Booting into %s again\n", menu.Name)
		cb := in.SetColdboot(loc.ConfigDir(), menu.TitleID)
		out.Coldboot = &cb
		if !cb.Result.OK() {
			out.Result = cb.Result
			return reportUninstall(out)
		}
	}

	printVerbose("Restoring %s at %s\n", titleLabel(rec), rec.Path)
	report := in.Restore(rec)
	out.Title = &report
	out.Result = report.Result
	return reportUninstall(out)
}

func reportUninstall(out installOutput) error {
	return reportSteps(out, "already restored")
}
