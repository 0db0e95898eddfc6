package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/titlepatch/internal/digest"
	"github.com/joshuapare/titlepatch/internal/testutil"
	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/verify"
)

func fileDigest(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return digest.Sum(data).String()
}

func TestResultsCommand(t *testing.T) {
	resetFlags()
	output, err := captureOutput(t, runResults)
	if err != nil {
		t.Fatalf("runResults() error = %v", err)
	}
	assertContains(t, output, []string{"  0  Success", " 19  FST_PARSING_FAILED", "COS_XML_HASH_MISMATCH"})

	jsonOut = true
	output, err = captureOutput(t, runResults)
	if err != nil {
		t.Fatalf("runResults() error = %v", err)
	}
	assertJSON(t, output)
	assertContains(t, output, []string{`"message": "MALLOC_FAILED"`})
}

func TestScanCommand(t *testing.T) {
	tests := []struct {
		name        string
		builtin     bool
		emptyMLC    bool
		json        bool
		want        types.Result
		wantContain []string
	}{
		{
			name:        "fixture baselines",
			want:        types.Success,
			wantContain: []string{"Fixture Title (000500101004E200)", "✓ FST: Success", "✓ COS: Success", "Current: 0005001010040200 (Fixture Menu)"},
		},
		{
			name:        "fixture baselines as JSON",
			json:        true,
			want:        types.Success,
			wantContain: []string{`"result": "Success"`, `"known": true`},
		},
		{
			name:        "built-in baselines do not match the fixture",
			builtin:     true,
			want:        types.FSTHashMismatch,
			wantContain: []string{"✗ FST: FST_HASH_MISMATCH"},
		},
		{
			name:     "nothing installed",
			emptyMLC: true,
			want:     types.NoCompatibleAppInstalled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json
			if !tt.builtin {
				baselinesPath = fixtureBaselines(t)
			}
			root := testutil.SetupMLC(t).Root
			if tt.emptyMLC {
				root = t.TempDir()
			}

			output, err := captureOutput(t, func() error { return runScan([]string{root}) })
			if got := resultOf(err); got != tt.want {
				t.Fatalf("runScan() result = %v (err %v), want %v\nOutput: %s", got, err, tt.want, output)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestCheckCommand(t *testing.T) {
	m := testutil.SetupMLC(t)

	tests := []struct {
		name    string
		title   string
		fst     string
		cos     string
		want    types.Result
		wantErr bool
	}{
		{name: "by title", title: fixtureIDString, want: types.Success},
		{name: "fst only", fst: testutil.FixtureFSTPatched, want: types.Success},
		{name: "cos only", cos: testutil.FixtureCOSPatched, want: types.Success},
		{name: "wrong fst", fst: testutil.FixtureFSTRaw, cos: testutil.FixtureCOSPatched, want: types.FSTHashMismatch},
		{name: "wrong cos", fst: testutil.FixtureFSTPatched, cos: testutil.FixtureFSTRaw, want: types.COSXMLHashMismatch},
		{name: "unknown title", title: "0005000010101010", wantErr: true},
		{name: "nothing to check", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			baselinesPath = fixtureBaselines(t)
			checkTitle, checkFSTHash, checkCOSHash = tt.title, tt.fst, tt.cos

			output, err := captureOutput(t, func() error { return runCheck([]string{m.TitleRoot}) })
			if tt.wantErr {
				if err == nil || resultOf(err) != -1 {
					t.Fatalf("runCheck() error = %v, want usage error", err)
				}
				return
			}
			if got := resultOf(err); got != tt.want {
				t.Fatalf("runCheck() result = %v, want %v\nOutput: %s", got, tt.want, output)
			}
		})
	}
}

func TestPatchCommands(t *testing.T) {
	resetFlags()
	baselinesPath = fixtureBaselines(t)
	dir := t.TempDir()

	fst := testutil.ResolvePath(t, testutil.FixtureFST)
	patchOutput = filepath.Join(dir, "title.fst")
	output, err := captureOutput(t, func() error { return runPatchFST([]string{fst}) })
	if err != nil {
		t.Fatalf("patch fst: %v", err)
	}
	assertContains(t, output, []string{testutil.FixtureFSTPatched, "Wrote "})
	if got := fileDigest(t, patchOutput); got != testutil.FixtureFSTPatched {
		t.Errorf("patched fst digest = %s", got)
	}
	if got := fileDigest(t, fst); got != testutil.FixtureFSTRaw {
		t.Errorf("input fst was modified: %s", got)
	}

	patchOutput = ""
	output, err = captureOutput(t, func() error {
		return runPatchCOS([]string{testutil.ResolvePath(t, testutil.FixtureCOS)})
	})
	if err != nil {
		t.Fatalf("patch cos: %v", err)
	}
	assertContains(t, output, []string{testutil.FixtureCOSPatched})

	patchTitle = fixtureIDString
	jsonOut = true
	output, err = captureOutput(t, func() error {
		return runPatchSystemXML([]string{testutil.ResolvePath(t, testutil.FixtureSystemXML)})
	})
	if err != nil {
		t.Fatalf("patch system-xml: %v", err)
	}
	assertJSON(t, output)
	assertContains(t, output, []string{testutil.FixtureSystemXMLHS})

	patchTitle = "0005000010101010"
	_, err = captureOutput(t, func() error {
		return runPatchSystemXML([]string{testutil.ResolvePath(t, testutil.FixtureSystemXML)})
	})
	if got := resultOf(err); got != types.SystemXMLInformationNotFound {
		t.Errorf("unknown coldboot title: result = %v", got)
	}
}

func TestPatchFST_Rejects(t *testing.T) {
	resetFlags()
	dir := t.TempDir()

	tests := []struct {
		name string
		data []byte
		want types.Result
	}{
		{"wrong magic", []byte("NOT AN FST"), types.FSTHeaderMismatch},
		{"truncated", []byte("FST\x00\x00"), types.FSTParsingFailed},
		{"empty", []byte{}, types.FailedToLoadFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			testutil.WriteFile(t, path, tt.data)
			_, err := captureOutput(t, func() error { return runPatchFST([]string{path}) })
			if got := resultOf(err); got != tt.want {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstallAndColdbootCommands(t *testing.T) {
	resetFlags()
	baselinesPath = fixtureBaselines(t)
	m := testutil.SetupMLC(t)
	backupDir = filepath.Join(t.TempDir(), "backup")
	installColdboot = true
	installPayload = filepath.Join(t.TempDir(), "safe.rpx")
	testutil.WriteFile(t, installPayload, testutil.Payload())

	output, err := captureOutput(t, func() error { return runInstall([]string{m.Root}) })
	if err != nil {
		t.Fatalf("runInstall() error = %v\nOutput: %s", err, output)
	}
	assertContains(t, output, []string{"✓ fst: Success", "✓ cos: Success", "✓ rpx: Success", "✓ system.xml: Success"})
	if got := fileDigest(t, verify.FSTPath(m.TitleRoot)); got != testutil.FixtureFSTPatched {
		t.Errorf("fst digest = %s", got)
	}
	if got := fileDigest(t, verify.SystemXMLPath(m.ConfigDir)); got != testutil.FixtureSystemXMLHS {
		t.Errorf("system.xml digest = %s", got)
	}

	installColdboot = false
	output, err = captureOutput(t, func() error { return runInstall([]string{m.Root}) })
	if err != nil {
		t.Fatalf("second runInstall() error = %v", err)
	}
	assertContains(t, output, []string{"fst: already patched", "cos: already patched", "rpx: already patched"})

	output, err = captureOutput(t, func() error { return runColdboot([]string{m.Root}) })
	if err != nil {
		t.Fatalf("coldboot status error = %v", err)
	}
	assertContains(t, output, []string{"Current: 000500101004E200 (Fixture Title)"})

	coldbootRestore = true
	_, err = captureOutput(t, func() error { return runColdboot([]string{m.Root}) })
	if err != nil {
		t.Fatalf("coldboot --restore error = %v", err)
	}
	if got := fileDigest(t, verify.SystemXMLPath(m.ConfigDir)); got != testutil.FixtureSystemXMLMenu {
		t.Errorf("system.xml digest after restore = %s", got)
	}

	coldbootRestore = false
	coldbootSet = "0005000010101010"
	_, err = captureOutput(t, func() error { return runColdboot([]string{m.Root}) })
	if got := resultOf(err); got != types.SystemXMLInformationNotFound {
		t.Errorf("coldboot --set unknown: result = %v", got)
	}
}

func TestInstallCommand_PayloadRequired(t *testing.T) {
	resetFlags()
	baselinesPath = fixtureBaselines(t)
	m := testutil.SetupMLC(t)
	backupDir = filepath.Join(t.TempDir(), "backup")

	_, err := captureOutput(t, func() error { return runInstall([]string{m.Root}) })
	if got := resultOf(err); got != types.FailedToLoadFile {
		t.Errorf("install without payload: result = %v", got)
	}
	if got := fileDigest(t, verify.FSTPath(m.TitleRoot)); got != testutil.FixtureFSTRaw {
		t.Errorf("fst written without payload: digest = %s", got)
	}

	installPayload = filepath.Join(t.TempDir(), "missing.rpx")
	_, err = captureOutput(t, func() error { return runInstall([]string{m.Root}) })
	if got := resultOf(err); got != types.FailedToLoadFile {
		t.Errorf("install with missing payload file: result = %v", got)
	}
}

func TestUninstallCommand(t *testing.T) {
	resetFlags()
	baselinesPath = fixtureBaselines(t)
	m := testutil.SetupMLC(t)
	backupDir = filepath.Join(t.TempDir(), "backup")
	installColdboot = true
	installPayload = filepath.Join(t.TempDir(), "safe.rpx")
	testutil.WriteFile(t, installPayload, testutil.Payload())

	if output, err := captureOutput(t, func() error { return runInstall([]string{m.Root}) }); err != nil {
		t.Fatalf("runInstall() error = %v\nOutput: %s", err, output)
	}

	output, err := captureOutput(t, func() error { return runUninstall([]string{m.Root}) })
	if err != nil {
		t.Fatalf("runUninstall() error = %v\nOutput: %s", err, output)
	}
	assertContains(t, output, []string{"✓ cos: Success", "✓ fst: Success", "✓ rpx: Success", "✓ system.xml: Success"})
	if got := fileDigest(t, verify.FSTPath(m.TitleRoot)); got != testutil.FixtureFSTRaw {
		t.Errorf("fst digest after uninstall = %s", got)
	}
	if got := fileDigest(t, verify.SystemXMLPath(m.ConfigDir)); got != testutil.FixtureSystemXMLMenu {
		t.Errorf("system.xml digest after uninstall = %s", got)
	}
	if _, err := os.Stat(verify.RPXPath(m.TitleRoot)); !os.IsNotExist(err) {
		t.Errorf("payload left after uninstall: %v", err)
	}

	output, err = captureOutput(t, func() error { return runUninstall([]string{m.Root}) })
	if err != nil {
		t.Fatalf("second runUninstall() error = %v", err)
	}
	assertContains(t, output, []string{"cos: already restored", "fst: already restored"})
}

func TestUninstallCommand_NoBackups(t *testing.T) {
	resetFlags()
	baselinesPath = fixtureBaselines(t)
	m := testutil.SetupMLC(t)
	backupDir = filepath.Join(t.TempDir(), "backup")

	_, err := captureOutput(t, func() error { return runUninstall([]string{m.Root}) })
	if got := resultOf(err); got != types.FailedToLoadFile {
		t.Errorf("result = %v", got)
	}
}

func TestInstallCommand_NothingInstalled(t *testing.T) {
	resetFlags()
	backupDir = filepath.Join(t.TempDir(), "backup")
	_, err := captureOutput(t, func() error { return runInstall([]string{t.TempDir()}) })
	if got := resultOf(err); got != types.NoCompatibleAppInstalled {
		t.Errorf("result = %v", got)
	}
}

func TestBaselinesCommand(t *testing.T) {
	resetFlags()
	output, err := captureOutput(t, runBaselines)
	if err != nil {
		t.Fatalf("runBaselines() error = %v", err)
	}
	assertContains(t, output, []string{"titles:", "130A76F8B36B36D43B88BBC74393D9AFD9CFD2A4", "menu: true"})

	path := filepath.Join(t.TempDir(), "out.yaml")
	testutil.WriteFile(t, path, []byte(output))
	baselinesPath = path
	if _, _, err := loadTables(); err != nil {
		t.Errorf("printed baselines do not load: %v", err)
	}
}

func TestSetupLogging(t *testing.T) {
	resetFlags()
	logLevel = "loud"
	if err := setupLogging(nil, nil); err == nil {
		t.Error("expected invalid level error")
	}

	logLevel = "debug"
	logDir = t.TempDir()
	if err := setupLogging(nil, nil); err != nil {
		t.Fatalf("setupLogging() error = %v", err)
	}
	entries, err := os.ReadDir(logDir)
	if err != nil || len(entries) != 1 {
		t.Errorf("expected one log file, got %v (%v)", entries, err)
	}
	resetFlags()
	if err := setupLogging(nil, nil); err != nil {
		t.Fatal(err)
	}
}
