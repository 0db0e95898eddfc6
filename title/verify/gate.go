package verify

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/joshuapare/titlepatch/internal/digest"
	"github.com/joshuapare/titlepatch/internal/logger"
	"github.com/joshuapare/titlepatch/internal/xmldoc"
	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
	"github.com/joshuapare/titlepatch/title/patch"
)

// Gate runs the load, patch, hash and compare sequence for title files.
type Gate struct {
	registry *baseline.Registry
	coldboot baseline.ColdbootTable
	loader   Loader
	log      *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLoader replaces the file loader.
func WithLoader(l Loader) Option {
	return func(g *Gate) { g.loader = l }
}

// WithLogger sets the diagnostic logger. The package logger is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) { g.log = l }
}

// NewGate returns a gate checking against registry and coldboot.
func NewGate(registry *baseline.Registry, coldboot baseline.ColdbootTable, opts ...Option) *Gate {
	g := &Gate{registry: registry, coldboot: coldboot, loader: FileLoader{}}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.Or(g.log)
	return g
}

// Registry returns the baseline registry the gate checks against.
func (g *Gate) Registry() *baseline.Registry { return g.registry }

// Coldboot returns the coldboot mapping table.
func (g *Gate) Coldboot() baseline.ColdbootTable { return g.coldboot }

// Loader returns the file loader.
func (g *Gate) Loader() Loader { return g.loader }

// Outcome is the full result of one inspection.
type Outcome struct {
	Result types.Result `json:"result"`
	Path   string       `json:"path"`
	// Expected is the baseline digest the patched file is compared to.
	Expected string `json:"expected,omitempty"`
	// Digest is the SHA-1 of the patched, serialized file. Zero when the
	// check failed before hashing.
	Digest digest.Digest `json:"digest,omitzero"`
	// AlreadyPatched is set when the file on disk already matches Expected.
	AlreadyPatched bool `json:"already_patched"`
	// Absent is set when the file did not exist yet. Raw is empty then.
	Absent  bool   `json:"absent,omitempty"`
	Raw     []byte `json:"-"`
	Patched []byte `json:"-"`
}

// Hashed reports whether the check got as far as computing Digest.
func (o Outcome) Hashed() bool { return o.Patched != nil }

// CheckFST verifies the filesystem table of the title at titleRoot.
func (g *Gate) CheckFST(titleRoot, expected string) types.Result {
	return g.InspectFST(titleRoot, expected).Result
}

// CheckCOS verifies the app descriptor of the title at titleRoot.
func (g *Gate) CheckCOS(titleRoot, expected string) types.Result {
	return g.InspectCOS(titleRoot, expected).Result
}

// CheckSystemXML verifies that pointing the coldboot title in configRoot at
// titleID yields the mapped digest.
func (g *Gate) CheckSystemXML(configRoot string, titleID baseline.TitleID) types.Result {
	return g.InspectSystemXML(configRoot, titleID).Result
}

// InspectFST is CheckFST returning the raw and patched bytes.
func (g *Gate) InspectFST(titleRoot, expected string) Outcome {
	out := Outcome{Path: FSTPath(titleRoot), Expected: expected}
	raw, res := g.load(out.Path)
	if res != types.Success {
		return g.finish(out, res)
	}
	out.Raw = raw

	data := bytes.Clone(raw)
	report, err := patch.FST(data, patch.WithLogger(g.log))
	if err != nil {
		g.log.Debug("fst rejected", "path", out.Path, "error", err)
		return g.finish(out, FSTResult(err))
	}
	g.log.Debug("fst patched in memory",
		"path", out.Path,
		"usable_section", report.UsableSection,
		"nodes", report.NodeCount,
		"updated", len(report.Updated))

	return g.compare(out, raw, data, types.FSTHashMismatch)
}

// InspectCOS is CheckCOS returning the raw and patched bytes.
func (g *Gate) InspectCOS(titleRoot, expected string) Outcome {
	out := Outcome{Path: COSPath(titleRoot), Expected: expected}
	raw, res := g.load(out.Path)
	if res != types.Success {
		return g.finish(out, res)
	}
	out.Raw = raw

	doc, err := xmldoc.Parse(raw)
	if err != nil {
		g.log.Debug("cos parse failed", "path", out.Path, "error", err)
		return g.finish(out, COSResult(err))
	}
	if err := patch.COS(doc, patch.WithLogger(g.log)); err != nil {
		g.log.Debug("cos rejected", "path", out.Path, "error", err)
		return g.finish(out, COSResult(err))
	}
	return g.compare(out, raw, xmldoc.Serialize(doc), types.COSXMLHashMismatch)
}

// InspectSystemXML is CheckSystemXML returning the raw and patched bytes.
func (g *Gate) InspectSystemXML(configRoot string, titleID baseline.TitleID) Outcome {
	out := Outcome{Path: SystemXMLPath(configRoot)}
	raw, res := g.load(out.Path)
	if res != types.Success {
		return g.finish(out, res)
	}
	out.Raw = raw

	doc, err := xmldoc.Parse(raw)
	if err != nil {
		g.log.Debug("system.xml parse failed", "path", out.Path, "error", err)
		return g.finish(out, SystemXMLResult(err))
	}
	entry, err := patch.SystemXML(doc, titleID, g.coldboot, patch.WithLogger(g.log))
	if err != nil {
		g.log.Debug("system.xml rejected", "path", out.Path, "error", err)
		return g.finish(out, SystemXMLResult(err))
	}
	out.Expected = entry.Hash
	return g.compare(out, raw, xmldoc.Serialize(doc), types.SystemXMLHashMismatch)
}

// CheckRPX verifies the payload already present at the title's entry point.
func (g *Gate) CheckRPX(titleRoot, expected string) types.Result {
	return g.InspectRPX(titleRoot, nil, expected).Result
}

// InspectRPX checks the payload for the title at titleRoot. With a nil
// payload the file on disk is checked; a missing file is FAILED_TO_LOAD_FILE.
// Otherwise payload is what will be written and must hash to expected. An
// empty expected accepts any payload and pins its own digest.
func (g *Gate) InspectRPX(titleRoot string, payload []byte, expected string) Outcome {
	out := Outcome{Path: RPXPath(titleRoot), Expected: expected}
	raw, err := g.loader.Load(out.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		out.Absent = true
	case err != nil:
		g.log.Debug("load failed", "path", out.Path, "error", err)
		return g.finish(out, LoadResult(err))
	}
	out.Raw = raw

	if len(payload) == 0 {
		if out.Absent {
			g.log.Debug("no payload at entry point", "path", out.Path)
			return g.finish(out, types.FailedToLoadFile)
		}
		payload = raw
	}
	if out.Expected == "" {
		out.Expected = digest.Sum(payload).String()
	}
	out.Patched = payload
	out.Digest = digest.Sum(payload)
	out.AlreadyPatched = !out.Absent && digest.Matches(digest.Sum(raw), out.Expected)
	if !digest.Matches(out.Digest, out.Expected) {
		g.log.Info("hash mismatch", "path", out.Path, "got", out.Digest.String(), "expected", out.Expected)
		return g.finish(out, types.RPXHashMismatch)
	}
	return g.finish(out, types.Success)
}

func (g *Gate) compare(out Outcome, raw, patched []byte, mismatch types.Result) Outcome {
	out.Patched = patched
	out.Digest = digest.Sum(patched)
	out.AlreadyPatched = digest.Matches(digest.Sum(raw), out.Expected)
	if !digest.Matches(out.Digest, out.Expected) {
		g.log.Info("hash mismatch", "path", out.Path, "got", out.Digest.String(), "expected", out.Expected)
		return g.finish(out, mismatch)
	}
	return g.finish(out, types.Success)
}

func (g *Gate) finish(out Outcome, res types.Result) Outcome {
	out.Result = res
	level := slog.LevelInfo
	if res != types.Success {
		level = slog.LevelWarn
	}
	g.log.Log(context.Background(), level, "check", "path", out.Path, "result", res.String())
	return out
}

// load maps loader failures onto results: a size ceiling hit is
// MALLOC_FAILED, everything else FAILED_TO_LOAD_FILE.
func (g *Gate) load(path string) ([]byte, types.Result) {
	data, err := g.loader.Load(path)
	if err != nil {
		g.log.Debug("load failed", "path", path, "error", err)
		return nil, LoadResult(err)
	}
	if len(data) == 0 {
		return nil, types.FailedToLoadFile
	}
	return data, types.Success
}
