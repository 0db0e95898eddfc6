package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/locate"
	"github.com/joshuapare/titlepatch/title/verify"
)

func init() {
	rootCmd.AddCommand(newScanCmd())
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <mlc-root>",
		Short: "Find a compatible title and check it against its baselines",
		Long: `The scan command looks for the supported system titles under
<mlc-root>/sys/title, checks the first one found against its baselines and
reports where the coldboot pointer in <mlc-root>/sys/config/system.xml goes.

Nothing is written.

Example:
  titlepatch scan /mnt/mlc
  titlepatch scan /mnt/mlc --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args)
		},
	}
	return cmd
}

type scanOutput struct {
	Title         *verify.ScanReport     `json:"title,omitempty"`
	Coldboot      *verify.ColdbootStatus `json:"coldboot,omitempty"`
	ColdbootCheck types.Result           `json:"coldboot_result"`
	Result        types.Result           `json:"result"`
}

func runScan(args []string) error {
	loc := locate.New(args[0])
	reg, table, err := loadTables()
	if err != nil {
		return err
	}

	printVerbose("Scanning: %s\n", loc.Root())
	rec, err := loc.Locate(reg)
	if err != nil {
		if !errors.Is(err, locate.ErrNoTitle) {
			return fmt.Errorf("failed to locate titles: %w", err)
		}
		if jsonOut {
			if err := printJSON(scanOutput{Result: types.NoCompatibleAppInstalled}); err != nil {
				return err
			}
		}
		return checkResult(types.NoCompatibleAppInstalled)
	}

	gate := verify.NewGate(reg, table)
	report, res, ok := boundedValue(func() (verify.ScanReport, types.Result) {
		r := gate.Scan(rec.TitleID)
		return r, r.Result
	})

	out := scanOutput{Result: res}
	if ok {
		out.Title = &report
	}
	status, statusRes := gate.ColdbootStatus(loc.ConfigDir())
	out.ColdbootCheck = statusRes
	if statusRes.OK() {
		out.Coldboot = &status
	}

	if jsonOut {
		if err := printJSON(out); err != nil {
			return err
		}
		return checkResult(res)
	}

	printInfo("\n%s %s\n", heading("Title:"), titleLabel(rec))
	printInfo("  Path: %s\n", rec.Path)
	if out.Title != nil {
		printOutcome("FST", report.FST)
		printOutcome("COS", report.COS)
	}
	printInfo("  %s %s\n", mark(res), res)

	printInfo("\n%s\n", heading("Coldboot:"))
	if out.Coldboot == nil {
		printInfo("  %s %s\n", mark(statusRes), statusRes)
	} else {
		name := status.Name
		if !status.Known {
			name = "unknown title"
		}
		printInfo("  Current: %s (%s)\n", status.Current, name)
		printInfo("  Points at installed title: %t\n", status.PointsAtTitle)
	}
	return checkResult(res)
}

func printOutcome(label string, o *verify.Outcome) {
	if o == nil {
		return
	}
	printInfo("  %s %s: %s\n", mark(o.Result), label, o.Result)
	if o.Hashed() {
		printVerbose("      digest:   %s\n", muted(o.Digest.String()))
		printVerbose("      expected: %s\n", muted(o.Expected))
	}
	if o.AlreadyPatched {
		printVerbose("      already patched on disk\n")
	}
}
