// Package install writes verified patches to an MLC volume. Every file is
// backed up before it is replaced, checked again after the write, and put
// back from the backup when the check fails. Restore reverses an install
// from those backups.
package install

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joshuapare/titlepatch/internal/digest"
	"github.com/joshuapare/titlepatch/internal/logger"
	"github.com/joshuapare/titlepatch/pkg/types"
	"github.com/joshuapare/titlepatch/title/baseline"
	"github.com/joshuapare/titlepatch/title/patch"
	"github.com/joshuapare/titlepatch/title/verify"
)

// Step names used in reports.
const (
	StepFST       = "fst"
	StepCOS       = "cos"
	StepRPX       = "rpx"
	StepSystemXML = "system.xml"
)

// Backup locations relative to <backupDir>/<TITLEID>.
const (
	backupFST       = "code/title.fst"
	backupCOS       = "code/cos1.xml"
	backupRPX       = "code/" + patch.SafeEntryPoint
	backupSystemXML = "config/system.xml"
)

// Step is the outcome of writing one file.
type Step struct {
	Name   string       `json:"name"`
	Path   string       `json:"path"`
	Backup string       `json:"backup,omitempty"`
	Result types.Result `json:"result"`
	// Skipped is set when the file already matched its baseline, or on
	// restore, when it already matched its backup.
	Skipped  bool   `json:"skipped"`
	Expected string `json:"expected,omitempty"`
	Digest   string `json:"digest,omitempty"`
}

// Report collects the steps of one install. Result is the first failure,
// or SUCCESS.
type Report struct {
	TitleID baseline.TitleID `json:"title_id"`
	Steps   []Step           `json:"steps"`
	Result  types.Result     `json:"result"`
}

func (r *Report) add(s Step) bool {
	r.Steps = append(r.Steps, s)
	r.Result = s.Result
	return s.Result == types.Success
}

// Installer applies gate-approved patches to disk.
type Installer struct {
	gate      *verify.Gate
	backupDir string
	fullSync  bool
	payload   []byte
	log       *slog.Logger

	write  func(path string, data []byte, fullSync bool) error
	read   func(path string) ([]byte, error)
	remove func(path string) error
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(in *Installer) { in.log = l }
}

// WithFullSync requests the strongest flush the platform offers
// (F_FULLFSYNC on macOS). Other platforms ignore it.
func WithFullSync(full bool) Option {
	return func(in *Installer) { in.fullSync = full }
}

// WithPayload sets the RPX written to the title's entry point. Without it,
// Install requires a payload to be there already.
func WithPayload(rpx []byte) Option {
	return func(in *Installer) { in.payload = rpx }
}

// New returns an installer that keeps backups under backupDir.
func New(gate *verify.Gate, backupDir string, opts ...Option) *Installer {
	in := &Installer{
		gate:      gate,
		backupDir: backupDir,
		write:     writeFileAtomic,
		read:      os.ReadFile,
		remove:    os.Remove,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.log = logger.Or(in.log)
	return in
}

// BackupPath returns where the original of rel is kept for titleID.
func (in *Installer) BackupPath(titleID baseline.TitleID, rel string) string {
	return filepath.Join(in.backupDir, titleID.String(), filepath.FromSlash(rel))
}

// Install patches the FST of an installed title and, when the title has a
// COS baseline, its cos1.xml, then puts the payload at the entry point the
// COS patch names. The payload is checked before anything is written. It
// stops at the first failing step.
func (in *Installer) Install(rec baseline.Record) Report {
	report := Report{TitleID: rec.TitleID}
	if !rec.Installed {
		report.Result = types.NoCompatibleAppInstalled
		return report
	}

	rpx := in.gate.InspectRPX(rec.Path, in.payload, rec.PayloadHash())
	if rpx.Result != types.Success {
		report.add(in.apply(StepRPX, rpx, "", types.RPXHashMismatch, types.RPXHashMismatchRestoreFailed))
		return report
	}

	fst := in.gate.InspectFST(rec.Path, rec.FSTHash)
	step := in.apply(StepFST, fst, in.BackupPath(rec.TitleID, backupFST),
		types.FSTHashMismatch, types.FSTHashMismatchRestoreFailed)
	if !report.add(step) {
		return report
	}

	if rec.HasCOS() {
		cos := in.gate.InspectCOS(rec.Path, rec.COSHash)
		step = in.apply(StepCOS, cos, in.BackupPath(rec.TitleID, backupCOS),
			types.COSXMLHashMismatch, types.COSXMLHashMismatchRestoreFailed)
		if !report.add(step) {
			return report
		}
	}

	report.add(in.apply(StepRPX, rpx, in.BackupPath(rec.TitleID, backupRPX),
		types.RPXHashMismatch, types.RPXHashMismatchRestoreFailed))
	return report
}

// SetColdboot points the coldboot title in configRoot at titleID. Pointing it
// at a system menu title undoes a coldboot install.
func (in *Installer) SetColdboot(configRoot string, titleID baseline.TitleID) Report {
	report := Report{TitleID: titleID}
	out := in.gate.InspectSystemXML(configRoot, titleID)
	report.add(in.apply(StepSystemXML, out, in.BackupPath(titleID, backupSystemXML),
		types.SystemXMLHashMismatch, types.SystemXMLHashMismatchRestoreFailed))
	return report
}

// apply runs backup, write, re-hash and, on mismatch, restore for one
// inspected file.
func (in *Installer) apply(name string, out verify.Outcome, backup string, mismatch, restoreFailed types.Result) Step {
	step := Step{Name: name, Path: out.Path, Result: out.Result, Expected: out.Expected}
	if out.Hashed() {
		step.Digest = out.Digest.String()
	}
	log := in.log.With("step", name, "path", out.Path)

	if out.Result != types.Success {
		log.Warn("check failed, nothing written", "result", out.Result.String())
		return step
	}
	if out.AlreadyPatched {
		log.Info("already patched")
		step.Skipped = true
		return step
	}

	if !out.Absent {
		if err := in.write(backup, out.Raw, in.fullSync); err != nil {
			log.Error("backup failed", "backup", backup, "error", err)
			step.Result = types.FailedToCopyFiles
			return step
		}
		step.Backup = backup
	}

	if err := in.write(out.Path, out.Patched, in.fullSync); err != nil {
		log.Error("write failed", "error", err)
		step.Result = types.FailedToCopyFiles
		return step
	}

	written, err := in.read(out.Path)
	if err != nil {
		log.Error("re-read failed", "error", err)
		step.Result = types.FailedToCheckHashCopiedFiles
		return step
	}
	got := digest.Sum(written)
	step.Digest = got.String()
	if digest.Matches(got, out.Expected) {
		log.Info("patched", "digest", step.Digest)
		step.Result = types.Success
		return step
	}

	log.Error("written file does not match baseline", "got", step.Digest, "expected", out.Expected)
	if err := in.putBack(out.Path, out.Raw, !out.Absent); err != nil {
		log.Error("restore failed", "backup", backup, "error", err)
		step.Result = restoreFailed
		return step
	}
	step.Result = mismatch
	return step
}

// putBack returns path to its earlier state: data when it existed,
// no file otherwise.
func (in *Installer) putBack(path string, data []byte, existed bool) error {
	if existed {
		return in.write(path, data, in.fullSync)
	}
	if err := in.remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// restoreTarget is one file Restore puts back.
type restoreTarget struct {
	name    string
	path    string
	backup  string
	patched string // baseline digest of the installed file, "" if not pinned
	// created files have no backup when they did not exist before install.
	created       bool
	mismatch      types.Result
	restoreFailed types.Result
}

// Restore undoes Install for rec from the backups under the backup dir: COS
// first so the title stops naming the payload, then the FST, then the
// payload. A backup that hashes to the patched baseline is refused. It stops
// at the first failing step.
func (in *Installer) Restore(rec baseline.Record) Report {
	report := Report{TitleID: rec.TitleID}
	if !rec.Installed {
		report.Result = types.NoCompatibleAppInstalled
		return report
	}

	var targets []restoreTarget
	if rec.HasCOS() {
		targets = append(targets, restoreTarget{
			name: StepCOS, path: verify.COSPath(rec.Path),
			backup: in.BackupPath(rec.TitleID, backupCOS), patched: rec.COSHash,
			mismatch: types.COSXMLHashMismatch, restoreFailed: types.COSXMLHashMismatchRestoreFailed,
		})
	}
	targets = append(targets,
		restoreTarget{
			name: StepFST, path: verify.FSTPath(rec.Path),
			backup: in.BackupPath(rec.TitleID, backupFST), patched: rec.FSTHash,
			mismatch: types.FSTHashMismatch, restoreFailed: types.FSTHashMismatchRestoreFailed,
		},
		restoreTarget{
			name: StepRPX, path: verify.RPXPath(rec.Path),
			backup: in.BackupPath(rec.TitleID, backupRPX), patched: rec.PayloadHash(), created: true,
			mismatch: types.RPXHashMismatch, restoreFailed: types.RPXHashMismatchRestoreFailed,
		},
	)

	for _, t := range targets {
		if !report.add(in.revert(t)) {
			return report
		}
	}
	return report
}

// revert writes one backup back, checks it and, on mismatch, puts back what
// was there before.
func (in *Installer) revert(t restoreTarget) Step {
	step := Step{Name: t.name, Path: t.path}
	log := in.log.With("step", t.name, "path", t.path)

	current, err := in.read(t.path)
	present := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Error("read failed", "error", err)
		step.Result = types.FailedToLoadFile
		return step
	}

	orig, err := in.read(t.backup)
	switch {
	case err == nil:
		step.Backup = t.backup
	case errors.Is(err, fs.ErrNotExist) && t.created:
		return in.removeCreated(step, t, current, present)
	default:
		log.Error("backup unreadable", "backup", t.backup, "error", err)
		step.Result = types.FailedToLoadFile
		return step
	}

	want := digest.Sum(orig)
	step.Expected = want.String()
	if t.patched != "" && digest.Matches(want, t.patched) {
		log.Error("backup holds the patched file", "backup", t.backup)
		step.Result = t.mismatch
		return step
	}
	if present && bytes.Equal(current, orig) {
		log.Info("already restored")
		step.Digest = step.Expected
		step.Skipped = true
		step.Result = types.Success
		return step
	}

	if err := in.write(t.path, orig, in.fullSync); err != nil {
		log.Error("write failed", "error", err)
		step.Result = types.FailedToCopyFiles
		return step
	}
	written, err := in.read(t.path)
	if err != nil {
		log.Error("re-read failed", "error", err)
		step.Result = types.FailedToCheckHashCopiedFiles
		return step
	}
	got := digest.Sum(written)
	step.Digest = got.String()
	if got == want {
		log.Info("restored", "digest", step.Digest)
		step.Result = types.Success
		return step
	}

	log.Error("restored file does not match backup", "got", step.Digest, "expected", step.Expected)
	if err := in.putBack(t.path, current, present); err != nil {
		log.Error("put back failed", "error", err)
		step.Result = t.restoreFailed
		return step
	}
	step.Result = t.mismatch
	return step
}

// removeCreated deletes a payload Install wrote where there was none. A file
// that is not the pinned payload was not written by Install and stays.
func (in *Installer) removeCreated(step Step, t restoreTarget, current []byte, present bool) Step {
	log := in.log.With("step", t.name, "path", t.path)
	step.Result = types.Success
	if !present {
		step.Skipped = true
		return step
	}
	step.Digest = digest.Sum(current).String()
	if t.patched != "" && !digest.Matches(digest.Sum(current), t.patched) {
		log.Info("not the installed payload, left in place", "digest", step.Digest)
		step.Skipped = true
		return step
	}
	if err := in.remove(t.path); err != nil {
		log.Error("remove failed", "error", err)
		step.Result = types.FailedToCopyFiles
		return step
	}
	log.Info("payload removed")
	return step
}
