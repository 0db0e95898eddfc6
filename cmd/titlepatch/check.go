package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
	"github.com/joshuapare/titlepatch/title/verify"
)

var (
	checkFSTHash string
	checkCOSHash string
	checkTitle   string
)

func init() {
	cmd := newCheckCmd()
	cmd.Flags().StringVar(&checkFSTHash, "fst-hash", "", "Expected SHA-1 of the patched title.fst")
	cmd.Flags().StringVar(&checkCOSHash, "cos-hash", "", "Expected SHA-1 of the patched cos1.xml")
	cmd.Flags().StringVar(&checkTitle, "title", "", "Take the expected hashes from this title's baseline")
	rootCmd.AddCommand(cmd)
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <title-root>",
		Short: "Check a title directory against expected digests",
		Long: `The check command patches code/title.fst and code/cos1.xml of the
title at <title-root> in memory and compares their digests with the expected
values. Nothing is written.

Example:
  titlepatch check /mnt/mlc/sys/title/00050010/1004e200 --title 000500101004E200
  titlepatch check ./title --fst-hash 130A76F8B36B36D43B88BBC74393D9AFD9CFD2A4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

type checkOutput struct {
	FST    *verify.Outcome `json:"fst,omitempty"`
	COS    *verify.Outcome `json:"cos,omitempty"`
	Result types.Result    `json:"result"`
}

func runCheck(args []string) error {
	titleRoot := args[0]
	reg, table, err := loadTables()
	if err != nil {
		return err
	}

	fstHash, cosHash := checkFSTHash, checkCOSHash
	if checkTitle != "" {
		id, err := baseline.ParseTitleID(checkTitle)
		if err != nil {
			return err
		}
		rec, ok := reg.Lookup(id)
		if !ok {
			return fmt.Errorf("no baseline for title %s", id)
		}
		if fstHash == "" {
			fstHash = rec.FSTHash
		}
		if cosHash == "" && rec.HasCOS() {
			cosHash = rec.COSHash
		}
	}
	runCOS := (baseline.Record{COSHash: cosHash}).HasCOS()
	if fstHash == "" && !runCOS {
		return errors.New("nothing to check: pass --fst-hash, --cos-hash or --title")
	}

	gate := verify.NewGate(reg, table)
	out, res, ok := boundedValue(func() (checkOutput, types.Result) {
		var o checkOutput
		o.Result = types.Success
		if fstHash != "" {
			fst := gate.InspectFST(titleRoot, fstHash)
			o.FST = &fst
			o.Result = fst.Result
		}
		if o.Result.OK() && runCOS {
			cos := gate.InspectCOS(titleRoot, cosHash)
			o.COS = &cos
			o.Result = cos.Result
		}
		return o, o.Result
	})
	if !ok {
		out = checkOutput{}
	}
	out.Result = res

	if jsonOut {
		if err := printJSON(out); err != nil {
			return err
		}
		return checkResult(res)
	}

	printInfo("\n%s %s\n", heading("Check:"), titleRoot)
	printOutcome("FST", out.FST)
	printOutcome("COS", out.COS)
	printInfo("  %s %s\n", mark(res), res)
	return checkResult(res)
}
