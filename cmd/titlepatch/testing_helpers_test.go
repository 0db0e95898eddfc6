package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/titlepatch/internal/testutil"
	"github.com/joshuapare/titlepatch/pkg/types"
)

// fixtureBaselines writes a baseline file matching the testdata fixtures and
// returns its path.
func fixtureBaselines(t *testing.T) string {
	t.Helper()
	yaml := `titles:
  - title_id: "` + fixtureIDString + `"
    name: "Fixture Title"
    fst_hash: "` + testutil.FixtureFSTPatched + `"
    cos_hash: "` + testutil.FixtureCOSPatched + `"
coldboot:
  - title_id: "0005001010040200"
    name: "Fixture Menu"
    hash: "` + testutil.FixtureSystemXMLMenu + `"
    menu: true
  - title_id: "` + fixtureIDString + `"
    name: "Fixture Title"
    hash: "` + testutil.FixtureSystemXMLHS + `"
`
	path := filepath.Join(t.TempDir(), "baselines.yaml")
	testutil.WriteFile(t, path, []byte(yaml))
	return path
}

const fixtureIDString = "000500101004E200"

// resetFlags puts every global flag back to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	noColor = true
	logDir = ""
	logLevel = "info"
	baselinesPath = ""
	timeout = 0

	checkFSTHash = ""
	checkCOSHash = ""
	checkTitle = ""
	patchOutput = ""
	patchTitle = ""
	backupDir = "titlepatch-backup"
	installColdboot = false
	installPayload = ""
	fullSync = false
	coldbootSet = ""
	coldbootRestore = false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large outputs cannot fill the pipe
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// resultOf extracts the result carried by a command error.
func resultOf(err error) types.Result {
	if err == nil {
		return types.Success
	}
	var re *resultError
	if errors.As(err, &re) {
		return re.result
	}
	return -1
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
