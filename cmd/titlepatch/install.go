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

var (
	backupDir       string
	installColdboot bool
	installPayload  string
	fullSync        bool
)

func init() {
	cmd := newInstallCmd()
	cmd.Flags().StringVar(&backupDir, "backup-dir", "titlepatch-backup", "Directory for backups of replaced files")
	cmd.Flags().BoolVar(&installColdboot, "coldboot", false, "Also boot straight into the patched title")
	cmd.Flags().StringVar(&installPayload, "payload", "", "RPX to place at the title's new entry point")
	cmd.Flags().BoolVar(&fullSync, "full-sync", false, "Use the strongest flush the platform offers")
	rootCmd.AddCommand(cmd)
}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <mlc-root>",
		Short: "Patch the compatible title found on an MLC volume",
		Long: `The install command locates a compatible title, checks it, backs up
the original files and writes the patched ones. Each written file is hashed
again; on a mismatch the original is put back.

The patched title starts code/safe.rpx. --payload copies that file in; without
it, a payload must already be there. Nothing is written otherwise.

With --coldboot the boot pointer in system.xml is moved to the title as well.

Example:
  titlepatch install /mnt/mlc --backup-dir ./backup --payload safe.rpx
  titlepatch install /mnt/mlc --backup-dir ./backup --payload safe.rpx --coldboot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(args)
		},
	}
	return cmd
}

type installOutput struct {
	Title    *install.Report `json:"title,omitempty"`
	Coldboot *install.Report `json:"coldboot,omitempty"`
	Result   types.Result    `json:"result"`
}

func runInstall(args []string) error {
	loc := locate.New(args[0])
	reg, table, err := loadTables()
	if err != nil {
		return err
	}

	rec, err := loc.Locate(reg)
	if err != nil {
		if errors.Is(err, locate.ErrNoTitle) {
			return reportInstall(installOutput{Result: types.NoCompatibleAppInstalled})
		}
		return fmt.Errorf("failed to locate titles: %w", err)
	}
	printVerbose("Installing to %s at %s\n", titleLabel(rec), rec.Path)

	opts := []install.Option{install.WithFullSync(fullSync)}
	if installPayload != "" {
		printVerbose("Reading payload: %s\n", installPayload)
		payload, err := verify.FileLoader{}.Load(installPayload)
		if err != nil {
			printVerbose("%v\n", err)
			return reportInstall(installOutput{Result: verify.LoadResult(err)})
		}
		opts = append(opts, install.WithPayload(payload))
	}

	in := install.New(verify.NewGate(reg, table), backupDir, opts...)
	report := in.Install(rec)
	out := installOutput{Title: &report, Result: report.Result}

	if report.Result.OK() && installColdboot {
		cb := in.SetColdboot(loc.ConfigDir(), rec.TitleID)
		out.Coldboot = &cb
		out.Result = cb.Result
	}
	return reportInstall(out)
}

func reportInstall(out installOutput) error {
	return reportSteps(out, "already patched")
}

// reportSteps prints both reports of out, labelling steps that had nothing
// to do with skippedLabel.
func reportSteps(out installOutput, skippedLabel string) error {
	if jsonOut {
		if err := printJSON(out); err != nil {
			return err
		}
		return checkResult(out.Result)
	}
	for _, r := range []*install.Report{out.Title, out.Coldboot} {
		if r != nil {
			printSteps(r, skippedLabel)
		}
	}
	printInfo("%s %s\n", mark(out.Result), out.Result)
	return checkResult(out.Result)
}

func printSteps(r *install.Report, skippedLabel string) {
	printInfo("\n%s\n", heading(r.TitleID.String()+":"))
	for _, s := range r.Steps {
		state := s.Result.String()
		if s.Skipped {
			state = skippedLabel
		}
		printInfo("  %s %s: %s\n", mark(s.Result), s.Name, state)
		printVerbose("      path:   %s\n", muted(s.Path))
		if s.Backup != "" {
			printVerbose("      backup: %s\n", muted(s.Backup))
		}
		if s.Digest != "" {
			printVerbose("      digest: %s\n", muted(s.Digest))
		}
	}
}
