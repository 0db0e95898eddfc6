package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshuapare/titlepatch/internal/logger"
	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
	"github.com/joshuapare/titlepatch/title/verify"
)

var (
	// Global flags
	verbose       bool
	quiet         bool
	jsonOut       bool
	noColor       bool
	logDir        string
	logLevel      string
	baselinesPath string
	timeout       time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "titlepatch",
	Short: "Verify and patch Wii U system titles for chain-loading",
	Long: `titlepatch checks the filesystem table, app descriptor and boot
configuration of a Wii U system title against known-good baselines, and
writes the patched files only when their SHA-1 digests match.

Every command operates on an MLC dump or mount, or on single files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		StringVar(&logDir, "log-dir", "", "Write a diagnostic log to this directory")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().
		StringVar(&baselinesPath, "baselines", "", "YAML file replacing the built-in baselines")
	rootCmd.PersistentFlags().
		DurationVar(&timeout, "timeout", 0, "Give up on a check after this long (0 = no limit)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		var re *resultError
		if errors.As(err, &re) {
			fmt.Fprintln(os.Stderr, re.Error())
		} else {
			printError("%v\n", err)
		}
		os.Exit(1)
	}
}

func setupLogging(_ *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	if err := logger.Init(logger.Options{
		Enabled: logDir != "",
		LogDir:  logDir,
		Level:   level,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}
	return nil
}

// resultError carries a non-success result out of a command so the process
// exits non-zero with the result's message.
type resultError struct {
	result types.Result
}

func (e *resultError) Error() string { return types.ErrorMessage(e.result) }

// checkResult returns nil for SUCCESS and a resultError otherwise.
func checkResult(r types.Result) error {
	if r.OK() {
		return nil
	}
	return &resultError{result: r}
}

// loadTables returns the baselines from --baselines, or the built-in ones.
func loadTables() (*baseline.Registry, baseline.ColdbootTable, error) {
	if baselinesPath == "" {
		return baseline.Default(), baseline.DefaultColdbootTable(), nil
	}
	printVerbose("Loading baselines: %s\n", baselinesPath)
	reg, table, err := baseline.LoadFile(baselinesPath)
	if err != nil {
		return nil, baseline.ColdbootTable{}, fmt.Errorf("failed to load baselines: %w", err)
	}
	return reg, table, nil
}

// bounded runs check under --timeout.
func bounded(check func() types.Result) types.Result {
	if timeout <= 0 {
		return check()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return verify.Bounded(ctx, check)
}

// boundedValue is bounded for checks that also produce a value. ok is false
// when the deadline passed before fn returned.
func boundedValue[T any](fn func() (T, types.Result)) (v T, res types.Result, ok bool) {
	done := make(chan T, 1)
	res = bounded(func() types.Result {
		val, r := fn()
		done <- val
		return r
	})
	select {
	case v = <-done:
		return v, res, true
	default:
		return v, res, false
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// titleLabel formats a record for text output.
func titleLabel(rec baseline.Record) string {
	return strings.TrimSpace(fmt.Sprintf("%s (%s)", rec.Name, rec.TitleID))
}
