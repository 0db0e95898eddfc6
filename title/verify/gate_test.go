package verify

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/titlepatch/internal/digest"
	"github.com/joshuapare/titlepatch/internal/testutil"
	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
)

var (
	fixtureID = baseline.TitleID(testutil.FixtureTitleID)
	menuID    = baseline.TitleID(testutil.FixtureMenuID)
)

func fixtureTables(t *testing.T, withCOS bool) (*baseline.Registry, baseline.ColdbootTable) {
	t.Helper()
	rec := baseline.Record{TitleID: fixtureID, Name: "fixture", FSTHash: testutil.FixtureFSTPatched}
	if withCOS {
		rec.COSHash = testutil.FixtureCOSPatched
	}
	reg, err := baseline.NewRegistry([]baseline.Record{rec})
	require.NoError(t, err)
	table, err := baseline.NewColdbootTable([]baseline.Coldboot{
		{TitleID: menuID, Name: "menu", Hash: testutil.FixtureSystemXMLMenu, Menu: true},
		{TitleID: fixtureID, Name: "fixture", Hash: testutil.FixtureSystemXMLHS},
	})
	require.NoError(t, err)
	return reg, table
}

func newFixtureGate(t *testing.T, opts ...Option) (*Gate, testutil.MLC) {
	t.Helper()
	m := testutil.SetupMLC(t)
	reg, table := fixtureTables(t, true)
	return NewGate(reg, table, opts...), m
}

func TestChecks_Fixture(t *testing.T) {
	g, m := newFixtureGate(t)

	require.Equal(t, types.Success, g.CheckFST(m.TitleRoot, testutil.FixtureFSTPatched))
	require.Equal(t, types.Success, g.CheckCOS(m.TitleRoot, testutil.FixtureCOSPatched))
	require.Equal(t, types.Success, g.CheckSystemXML(m.ConfigDir, fixtureID))
	require.Equal(t, types.Success, g.CheckSystemXML(m.ConfigDir, menuID))

	// Checks never write.
	require.Equal(t, testutil.FixtureFSTRaw, digestOf(t, FSTPath(m.TitleRoot)))
}

func TestInspect_Outcome(t *testing.T) {
	g, m := newFixtureGate(t)

	out := g.InspectFST(m.TitleRoot, testutil.FixtureFSTPatched)
	require.Equal(t, types.Success, out.Result)
	require.True(t, out.Hashed())
	require.False(t, out.AlreadyPatched)
	require.Equal(t, FSTPath(m.TitleRoot), out.Path)
	require.Equal(t, testutil.FixtureFSTPatched, out.Digest.String())
	require.Equal(t, testutil.FixtureFSTRaw, digest.Sum(out.Raw).String())
	require.False(t, bytes.Equal(out.Raw, out.Patched))

	// Once the patched bytes are on disk the file is already patched.
	testutil.WriteFile(t, out.Path, out.Patched)
	again := g.InspectFST(m.TitleRoot, testutil.FixtureFSTPatched)
	require.Equal(t, types.Success, again.Result)
	require.True(t, again.AlreadyPatched)
	require.Equal(t, again.Raw, again.Patched)

	sys := g.InspectSystemXML(m.ConfigDir, fixtureID)
	require.Equal(t, types.Success, sys.Result)
	require.Equal(t, testutil.FixtureSystemXMLHS, sys.Expected)
}

func TestCheckCOS_OneCharacterAltered(t *testing.T) {
	g, m := newFixtureGate(t)
	raw := testutil.ReadFixture(t, testutil.FixtureCOS)
	altered := bytes.Replace(raw, []byte("21204"), []byte("21205"), 1)
	require.NotEqual(t, raw, altered)
	testutil.WriteFile(t, COSPath(m.TitleRoot), altered)

	require.Equal(t, types.COSXMLHashMismatch, g.CheckCOS(m.TitleRoot, testutil.FixtureCOSPatched))
}

func TestCheckFST_Failures(t *testing.T) {
	good := testutil.ReadFixture(t, testutil.FixtureFST)
	wrongMagic := bytes.Clone(good)
	wrongMagic[0] = 'X'
	noUsable := testutil.BuildFST(
		[]testutil.FSTSection{{HashMode: 1}},
		[]testutil.FSTNode{{Dir: true}},
	)

	tests := []struct {
		name     string
		data     []byte
		expected string
		want     types.Result
	}{
		{"wrong baseline", good, testutil.FixtureFSTRaw, types.FSTHashMismatch},
		{"no baseline", good, "0", types.FSTHashMismatch},
		{"wrong magic", wrongMagic, testutil.FixtureFSTPatched, types.FSTHeaderMismatch},
		{"too short for magic", []byte("FS"), testutil.FixtureFSTPatched, types.FSTHeaderMismatch},
		{"truncated", good[:0x30], testutil.FixtureFSTPatched, types.FSTParsingFailed},
		{"no usable section", noUsable, testutil.FixtureFSTPatched, types.FSTNoUsableSectionFound},
		{"empty file", []byte{}, testutil.FixtureFSTPatched, types.FailedToLoadFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, m := newFixtureGate(t)
			testutil.WriteFile(t, FSTPath(m.TitleRoot), tt.data)
			require.Equal(t, tt.want, g.CheckFST(m.TitleRoot, tt.expected))
		})
	}
}

func TestCheckCOS_Failures(t *testing.T) {
	tests := []struct {
		name string
		data string
		want types.Result
	}{
		{"not xml", "<app><argstr type=>x</argstr></app>", types.COSXMLParsingFailed},
		{"no root", "   ", types.COSXMLParsingFailed},
		{"missing fields", "<app><argstr>hs.rpx</argstr></app>", types.COSXMLParsingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, m := newFixtureGate(t)
			testutil.WriteFile(t, COSPath(m.TitleRoot), []byte(tt.data))
			require.Equal(t, tt.want, g.CheckCOS(m.TitleRoot, testutil.FixtureCOSPatched))
		})
	}
}

func TestCheckSystemXML_Failures(t *testing.T) {
	g, m := newFixtureGate(t)
	require.Equal(t, types.SystemXMLInformationNotFound, g.CheckSystemXML(m.ConfigDir, 0x0005000010101010))

	testutil.WriteFile(t, SystemXMLPath(m.ConfigDir), []byte("<system><version>1</version></system>"))
	require.Equal(t, types.SystemXMLParsingFailed, g.CheckSystemXML(m.ConfigDir, fixtureID))

	testutil.WriteFile(t, SystemXMLPath(m.ConfigDir), []byte("<system>"))
	require.Equal(t, types.SystemXMLParsingFailed, g.CheckSystemXML(m.ConfigDir, fixtureID))

	require.Equal(t, types.FailedToLoadFile, g.CheckSystemXML(filepath.Join(m.Root, "missing"), fixtureID))
}

func TestLoaderFailures(t *testing.T) {
	g, m := newFixtureGate(t, WithLoader(FileLoader{MaxSize: 64}))
	require.Equal(t, types.MallocFailed, g.CheckFST(m.TitleRoot, testutil.FixtureFSTPatched))

	require.NoError(t, os.Remove(COSPath(m.TitleRoot)))
	require.Equal(t, types.FailedToLoadFile, g.CheckCOS(m.TitleRoot, testutil.FixtureCOSPatched))
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	l := FileLoader{MaxSize: 4}

	_, err := l.Load(filepath.Join(dir, "nope"))
	require.ErrorIs(t, err, fs.ErrNotExist)

	testutil.WriteFile(t, filepath.Join(dir, "empty"), nil)
	_, err = l.Load(filepath.Join(dir, "empty"))
	require.ErrorIs(t, err, ErrEmptyFile)

	testutil.WriteFile(t, filepath.Join(dir, "big"), []byte("12345"))
	_, err = l.Load(filepath.Join(dir, "big"))
	require.ErrorIs(t, err, ErrTooLarge)

	testutil.WriteFile(t, filepath.Join(dir, "ok"), []byte("1234"))
	data, err := l.Load(filepath.Join(dir, "ok"))
	require.NoError(t, err)
	require.Equal(t, []byte("1234"), data)

	_, err = l.Load(dir)
	require.Error(t, err)
}

type mapLoader map[string][]byte

func (m mapLoader) Load(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func TestWithLoader(t *testing.T) {
	reg, table := fixtureTables(t, false)
	root := "/virtual/title"
	g := NewGate(reg, table, WithLoader(mapLoader{
		FSTPath(root): testutil.ReadFixture(t, testutil.FixtureFST),
	}))
	require.Equal(t, types.Success, g.CheckFST(root, testutil.FixtureFSTPatched))
	require.Equal(t, types.FailedToLoadFile, g.CheckCOS(root, testutil.FixtureCOSPatched))
}

func TestScan(t *testing.T) {
	g, m := newFixtureGate(t)

	report := g.Scan(fixtureID)
	require.Equal(t, types.NoCompatibleAppInstalled, report.Result)

	require.NoError(t, g.Registry().MarkInstalled(fixtureID, m.TitleRoot))
	report = g.Scan(fixtureID)
	require.Equal(t, types.Success, report.Result)
	require.NotNil(t, report.FST)
	require.NotNil(t, report.COS)
	require.Equal(t, types.Success, report.COS.Result)

	require.Equal(t, types.NoCompatibleAppInstalled, g.Scan(0x0005000010101010).Result)

	// The first failing check decides.
	testutil.WriteFile(t, FSTPath(m.TitleRoot), []byte("XST"))
	report = g.Scan(fixtureID)
	require.Equal(t, types.FSTHeaderMismatch, report.Result)
	require.Nil(t, report.COS)
}

func TestScan_WithoutCOSBaseline(t *testing.T) {
	m := testutil.SetupMLC(t)
	reg, table := fixtureTables(t, false)
	g := NewGate(reg, table)
	require.NoError(t, reg.MarkInstalled(fixtureID, m.TitleRoot))

	// A broken cos1.xml does not matter when the variant has no COS baseline.
	testutil.WriteFile(t, COSPath(m.TitleRoot), []byte("garbage"))
	report := g.Scan(fixtureID)
	require.Equal(t, types.Success, report.Result)
	require.Nil(t, report.COS)
}

func TestColdbootStatus(t *testing.T) {
	g, m := newFixtureGate(t)

	st, res := g.ColdbootStatus(m.ConfigDir)
	require.Equal(t, types.Success, res)
	require.Equal(t, menuID, st.Current)
	require.True(t, st.Known)
	require.True(t, st.Menu)
	require.False(t, st.PointsAtTitle)

	require.NoError(t, g.Registry().MarkInstalled(fixtureID, m.TitleRoot))
	testutil.WriteFile(t, SystemXMLPath(m.ConfigDir),
		[]byte("<system><default_title_id>000500101004E200</default_title_id></system>"))
	st, res = g.ColdbootStatus(m.ConfigDir)
	require.Equal(t, types.Success, res)
	require.Equal(t, "fixture", st.Name)
	require.False(t, st.Menu)
	require.True(t, st.PointsAtTitle)

	testutil.WriteFile(t, SystemXMLPath(m.ConfigDir), []byte("<system/>"))
	_, res = g.ColdbootStatus(m.ConfigDir)
	require.Equal(t, types.SystemXMLParsingFailed, res)
}

func TestBounded(t *testing.T) {
	res := Bounded(context.Background(), func() types.Result { return types.COSXMLHashMismatch })
	require.Equal(t, types.COSXMLHashMismatch, res)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	res = Bounded(ctx, func() types.Result { called = true; return types.Success })
	require.Equal(t, types.FailedToLoadFile, res)
	require.False(t, called)

	release := make(chan struct{})
	defer close(release)
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	res = Bounded(ctx, func() types.Result {
		<-release
		return types.Success
	})
	require.Equal(t, types.FailedToLoadFile, res)
}

func digestOf(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return digest.Sum(data).String()
}

func TestInspectRPX(t *testing.T) {
	payload := testutil.Payload()
	pinned := digest.Sum(payload).String()

	tests := []struct {
		name     string
		onDisk   []byte
		payload  []byte
		expected string
		want     types.Result
		absent   bool
		patched  bool
	}{
		{"new payload, not pinned", nil, payload, "", types.Success, true, false},
		{"new payload, pinned", nil, payload, pinned, types.Success, true, false},
		{"payload differs from pin", nil, payload, testutil.FixtureFSTRaw, types.RPXHashMismatch, true, false},
		{"replaces other file", []byte("old"), payload, pinned, types.Success, false, false},
		{"already in place", payload, payload, pinned, types.Success, false, true},
		{"no payload, none on disk", nil, nil, "", types.FailedToLoadFile, true, false},
		{"no payload, pinned file on disk", payload, nil, pinned, types.Success, false, true},
		{"no payload, other file on disk", []byte("old"), nil, pinned, types.RPXHashMismatch, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, m := newFixtureGate(t)
			if tt.onDisk != nil {
				testutil.WriteFile(t, RPXPath(m.TitleRoot), tt.onDisk)
			}

			out := g.InspectRPX(m.TitleRoot, tt.payload, tt.expected)
			require.Equal(t, tt.want, out.Result)
			require.Equal(t, tt.absent, out.Absent)
			require.Equal(t, tt.patched, out.AlreadyPatched)
			if tt.want == types.Success {
				require.Equal(t, pinned, out.Expected)
				require.Equal(t, payload, out.Patched)
				require.Equal(t, tt.onDisk, out.Raw)
			}

			// Inspection never writes.
			_, err := os.Stat(RPXPath(m.TitleRoot))
			require.Equal(t, tt.onDisk == nil, os.IsNotExist(err))
		})
	}
}

func TestCheckRPX_LoadFailure(t *testing.T) {
	g, m := newFixtureGate(t, WithLoader(FileLoader{MaxSize: 4}))
	testutil.WriteFile(t, RPXPath(m.TitleRoot), testutil.Payload())
	require.Equal(t, types.MallocFailed, g.CheckRPX(m.TitleRoot, ""))
}
