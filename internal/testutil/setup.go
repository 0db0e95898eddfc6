package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// ResolvePath finds a repository-relative path from whichever package the
// test runs in. Calls t.Skip if the file is not found.
func ResolvePath(t *testing.T, relativePath string) string {
	t.Helper()

	candidates := []string{
		relativePath,                  // Direct path (from repo root)
		"../" + relativePath,          // cmd-style packages one level deep
		"../../" + relativePath,       // From package two levels deep (e.g., title/patch/)
		"../../../" + relativePath,    // From package three levels deep
		"../../../../" + relativePath, // From package four levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	t.Skipf("fixture not found at any candidate path starting from: %s", relativePath)
	return ""
}

// ReadFixture returns the bytes of a repository-relative fixture.
func ReadFixture(t *testing.T, relativePath string) []byte {
	t.Helper()
	data, err := os.ReadFile(ResolvePath(t, relativePath))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", relativePath, err)
	}
	return data
}

// MLC is a temporary storage tree laid out like the console's MLC volume.
type MLC struct {
	Root      string
	TitleRoot string
	ConfigDir string
}

// TitleDir returns the directory a title lives in under root.
func TitleDir(root string, titleID uint64) string {
	return filepath.Join(root, "sys", "title",
		fmt.Sprintf("%08x", uint32(titleID>>32)), fmt.Sprintf("%08x", uint32(titleID)))
}

// SetupMLC copies the fixtures into a temporary MLC tree:
//
//	<root>/sys/title/00050010/1004e200/code/title.fst
//	<root>/sys/title/00050010/1004e200/code/cos1.xml
//	<root>/sys/config/system.xml
func SetupMLC(t *testing.T) MLC {
	t.Helper()

	root := t.TempDir()
	m := MLC{
		Root:      root,
		TitleRoot: TitleDir(root, FixtureTitleID),
		ConfigDir: filepath.Join(root, "sys", "config"),
	}
	WriteFile(t, filepath.Join(m.TitleRoot, "code", "title.fst"), ReadFixture(t, FixtureFST))
	WriteFile(t, filepath.Join(m.TitleRoot, "code", "cos1.xml"), ReadFixture(t, FixtureCOS))
	WriteFile(t, filepath.Join(m.ConfigDir, "system.xml"), ReadFixture(t, FixtureSystemXML))
	return m
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
