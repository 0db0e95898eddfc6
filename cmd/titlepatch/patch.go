package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/internal/digest"
	"github.com/joshuapare/titlepatch/internal/xmldoc"
	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
	"github.com/joshuapare/titlepatch/title/patch"
	"github.com/joshuapare/titlepatch/title/verify"
)

var (
	patchOutput string
	patchTitle  string
)

func init() {
	cmd := newPatchCmd()
	cmd.PersistentFlags().StringVarP(&patchOutput, "output", "o", "", "Write the patched file here")
	rootCmd.AddCommand(cmd)
}

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Patch a single title file offline",
		Long: `The patch commands apply one patcher to a file and print the digest
of the result, so it can be compared with a baseline by hand. Without
--output nothing is written.

Example:
  titlepatch patch fst title.fst -o title.patched.fst
  titlepatch patch cos cos1.xml -o cos1.patched.xml
  titlepatch patch system-xml system.xml --title 000500101004E200`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "fst <title.fst>",
		Short: "Move every node onto the usable FST section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatchFST(args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cos <cos1.xml>",
		Short: "Point the app descriptor at safe.rpx with full permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatchCOS(args)
		},
	})
	sys := &cobra.Command{
		Use:   "system-xml <system.xml>",
		Short: "Set the coldboot title in system.xml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatchSystemXML(args)
		},
	}
	sys.Flags().StringVar(&patchTitle, "title", "", "Title id to boot into (required)")
	cmd.AddCommand(sys)
	return cmd
}

type patchOutputJSON struct {
	Input  string             `json:"input"`
	Output string             `json:"output,omitempty"`
	Digest string             `json:"digest,omitempty"`
	Nodes  []patch.NodeChange `json:"nodes,omitempty"`
	Result types.Result       `json:"result"`
}

func runPatchFST(args []string) error {
	data, res := loadInput(args[0])
	if !res.OK() {
		return reportPatch(patchOutputJSON{Input: args[0], Result: res})
	}
	report, err := patch.FST(data)
	if err != nil {
		printVerbose("%v\n", err)
		return reportPatch(patchOutputJSON{Input: args[0], Result: verify.FSTResult(err)})
	}
	for _, c := range report.Updated {
		printVerbose("  node %d %q: section %d -> %d\n", c.Index, c.Name, c.From, c.To)
	}
	return finishPatch(args[0], data, report.Updated)
}

func runPatchCOS(args []string) error {
	data, res := loadInput(args[0])
	if !res.OK() {
		return reportPatch(patchOutputJSON{Input: args[0], Result: res})
	}
	doc, err := xmldoc.Parse(data)
	if err == nil {
		err = patch.COS(doc)
	}
	if err != nil {
		printVerbose("%v\n", err)
		return reportPatch(patchOutputJSON{Input: args[0], Result: verify.COSResult(err)})
	}
	return finishPatch(args[0], xmldoc.Serialize(doc), nil)
}

func runPatchSystemXML(args []string) error {
	if patchTitle == "" {
		return fmt.Errorf("--title is required")
	}
	id, err := baseline.ParseTitleID(patchTitle)
	if err != nil {
		return err
	}
	_, table, err := loadTables()
	if err != nil {
		return err
	}

	data, res := loadInput(args[0])
	if !res.OK() {
		return reportPatch(patchOutputJSON{Input: args[0], Result: res})
	}
	doc, err := xmldoc.Parse(data)
	var entry baseline.Coldboot
	if err == nil {
		entry, err = patch.SystemXML(doc, id, table)
	}
	if err != nil {
		printVerbose("%v\n", err)
		return reportPatch(patchOutputJSON{Input: args[0], Result: verify.SystemXMLResult(err)})
	}
	printVerbose("Expected digest for %s: %s\n", entry.Name, entry.Hash)
	return finishPatch(args[0], xmldoc.Serialize(doc), nil)
}

func loadInput(path string) ([]byte, types.Result) {
	printVerbose("Reading: %s\n", path)
	data, err := verify.FileLoader{}.Load(path)
	if err != nil {
		printVerbose("%v\n", err)
	}
	return data, verify.LoadResult(err)
}

func finishPatch(input string, patched []byte, nodes []patch.NodeChange) error {
	out := patchOutputJSON{
		Input:  input,
		Digest: digest.Sum(patched).String(),
		Nodes:  nodes,
		Result: types.Success,
	}
	if patchOutput != "" {
		if err := os.WriteFile(patchOutput, patched, 0o644); err != nil {
			return reportPatch(patchOutputJSON{Input: input, Digest: out.Digest, Result: types.FailedToCopyFiles})
		}
		out.Output = patchOutput
	}
	return reportPatch(out)
}

func reportPatch(out patchOutputJSON) error {
	if jsonOut {
		if err := printJSON(out); err != nil {
			return err
		}
		return checkResult(out.Result)
	}
	if out.Digest != "" {
		printInfo("%s  %s\n", out.Digest, out.Input)
	}
	if out.Output != "" {
		printInfo("Wrote %s\n", out.Output)
	}
	if !out.Result.OK() {
		printInfo("%s %s\n", mark(out.Result), out.Result)
	}
	return checkResult(out.Result)
}
