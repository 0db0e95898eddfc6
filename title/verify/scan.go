package verify

import (
	"context"

	"github.com/joshuapare/titlepatch/internal/xmldoc"
	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
	"github.com/joshuapare/titlepatch/title/patch"
)

// ScanReport is the compatibility verdict for one installed title.
type ScanReport struct {
	Record baseline.Record `json:"record"`
	FST    *Outcome        `json:"fst,omitempty"`
	COS    *Outcome        `json:"cos,omitempty"`
	Result types.Result    `json:"result"`
}

// Scan runs every check the title's baseline calls for. Unknown or
// uninstalled titles are NO_COMPATIBLE_APP_INSTALLED. The first failing
// check decides the result.
func (g *Gate) Scan(titleID baseline.TitleID) ScanReport {
	rec, ok := g.registry.Lookup(titleID)
	if !ok || !rec.Installed {
		g.log.Info("no compatible title", "title_id", titleID.String(), "known", ok)
		return ScanReport{Record: rec, Result: types.NoCompatibleAppInstalled}
	}
	report := ScanReport{Record: rec}

	fst := g.InspectFST(rec.Path, rec.FSTHash)
	report.FST = &fst
	if fst.Result != types.Success {
		report.Result = fst.Result
		return report
	}

	if rec.HasCOS() {
		cos := g.InspectCOS(rec.Path, rec.COSHash)
		report.COS = &cos
		report.Result = cos.Result
		return report
	}
	report.Result = types.Success
	return report
}

// ColdbootStatus describes where the boot pointer currently goes.
type ColdbootStatus struct {
	Current baseline.TitleID `json:"current"`
	// Known is set when Current is in the coldboot table.
	Known bool   `json:"known"`
	Name  string `json:"name,omitempty"`
	Menu  bool   `json:"menu"`
	// PointsAtTitle is set when Current is an installed baseline title.
	PointsAtTitle bool `json:"points_at_title"`
}

// ColdbootStatus reads the current coldboot title from configRoot.
func (g *Gate) ColdbootStatus(configRoot string) (ColdbootStatus, types.Result) {
	path := SystemXMLPath(configRoot)
	raw, res := g.load(path)
	if res != types.Success {
		return ColdbootStatus{}, res
	}
	doc, err := xmldoc.Parse(raw)
	if err != nil {
		g.log.Debug("system.xml parse failed", "path", path, "error", err)
		return ColdbootStatus{}, types.SystemXMLParsingFailed
	}
	id, err := patch.DefaultTitleID(doc)
	if err != nil {
		g.log.Debug("default_title_id unreadable", "path", path, "error", err)
		return ColdbootStatus{}, types.SystemXMLParsingFailed
	}

	st := ColdbootStatus{Current: id}
	if entry, ok := g.coldboot.Lookup(id); ok {
		st.Known = true
		st.Name = entry.Name
		st.Menu = entry.Menu
	}
	if rec, ok := g.registry.Lookup(id); ok && rec.Installed {
		st.PointsAtTitle = true
	}
	g.log.Info("coldboot status", "current", id.String(), "known", st.Known, "points_at_title", st.PointsAtTitle)
	return st, types.Success
}

// Bounded runs check and gives up once ctx is done. A check that does not
// finish in time is FAILED_TO_LOAD_FILE; it keeps running to completion in
// the background and its result is dropped.
func Bounded(ctx context.Context, check func() types.Result) types.Result {
	if err := ctx.Err(); err != nil {
		return types.FailedToLoadFile
	}
	done := make(chan types.Result, 1)
	go func() {
		done <- check()
	}()
	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return types.FailedToLoadFile
	}
}
