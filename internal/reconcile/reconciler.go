// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"fmt"
	"os"
	"time"

	"fixdates/internal/metadata"
	"fixdates/internal/observability"
	"fixdates/internal/platform"
)

// Outcome is the reconciliation verdict for one file.
type Outcome string

const (
	OutcomeSame       Outcome = "same"
	OutcomeDifferent  Outcome = "different"
	OutcomeUpdated    Outcome = "updated"
	OutcomeUnresolved Outcome = "unresolved"
	OutcomeError      Outcome = "error"
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{OutcomeSame, OutcomeDifferent, OutcomeUpdated, OutcomeUnresolved, OutcomeError}

// Result carries the verdict and the two compared timestamps.
type Result struct {
	Path       string
	Outcome    Outcome
	Provenance metadata.Provenance
	// MetadataUnix is the resolved time; zero when unresolved.
	MetadataUnix int64
	// FileUnix is the mtime before any update; zero when it was never read.
	FileUnix int64
	// DryRun marks an updated verdict that was not written to disk.
	DryRun bool
	Err    error
}

// Compared reports whether both timestamps were read.
func (r Result) Compared() bool {
	switch r.Outcome {
	case OutcomeSame, OutcomeDifferent, OutcomeUpdated:
		return true
	}
	return false
}

// Recorder is called with the old and new mtime before each write. A
// returned error cancels the write.
type Recorder interface {
	Record(path string, oldUnix, newUnix int64) error
}

// Options controls the reconciler.
type Options struct {
	DryRun   bool
	Recorder Recorder
}

// Reconciler compares resolved timestamps to file mtimes and applies fixes.
type Reconciler struct {
	opts     Options
	observer *observability.StandardObserver

	stat    func(string) (os.FileInfo, error)
	chtimes func(string, time.Time, time.Time) error
}

var _ observability.Observable = (*Reconciler)(nil)

// NewReconciler creates a reconciler. observer may be nil.
func NewReconciler(opts Options, observer *observability.StandardObserver) *Reconciler {
	return &Reconciler{
		opts:     opts,
		observer: observer,
		stat:     os.Stat,
		chtimes:  os.Chtimes,
	}
}

// GetComponentName returns the component identifier
func (r *Reconciler) GetComponentName() string {
	return "reconciler"
}

// Reconcile decides and, when fix is set, applies the outcome for path.
// Only the updated branch touches the file system.
func (r *Reconciler) Reconcile(path string, resolved metadata.ResolvedTimestamp, fix bool) Result {
	var finishTiming func(bool, map[string]interface{})
	if r.observer != nil {
		finishTiming = r.observer.StartTiming(r.GetComponentName(), "reconcile", path)
	}

	result := r.reconcile(path, resolved, fix)

	if finishTiming != nil {
		finishTiming(result.Outcome != OutcomeError, map[string]interface{}{
			"outcome":       string(result.Outcome),
			"metadata_unix": result.MetadataUnix,
			"file_unix":     result.FileUnix,
			"dry_run":       result.DryRun,
		})
	}
	return result
}

func (r *Reconciler) reconcile(path string, resolved metadata.ResolvedTimestamp, fix bool) Result {
	result := Result{Path: path, Provenance: resolved.Provenance}
	if result.Provenance == "" {
		result.Provenance = metadata.ProvenanceNone
	}

	if !resolved.Found() {
		result.Outcome = OutcomeUnresolved
		return result
	}
	result.MetadataUnix = resolved.Unix

	info, err := r.stat(path)
	if err != nil {
		result.Outcome = OutcomeError
		result.Err = metadata.NewMetadataError(path, metadata.ErrorKindIO, "cannot stat file",
			platform.WrapFileError(err, path, "stat"))
		return result
	}
	result.FileUnix = info.ModTime().Unix()

	if result.FileUnix == result.MetadataUnix {
		result.Outcome = OutcomeSame
		return result
	}
	if !fix {
		result.Outcome = OutcomeDifferent
		return result
	}

	result.Outcome = OutcomeUpdated
	if r.opts.DryRun {
		result.DryRun = true
		return result
	}

	if r.opts.Recorder != nil {
		if err := r.opts.Recorder.Record(path, result.FileUnix, result.MetadataUnix); err != nil {
			result.Outcome = OutcomeError
			result.Err = metadata.NewMetadataError(path, metadata.ErrorKindIO, "journal write failed", err)
			return result
		}
	}

	t := time.Unix(result.MetadataUnix, 0)
	if err := r.chtimes(path, t, t); err != nil {
		result.Outcome = OutcomeError
		result.Err = metadata.NewMetadataError(path, metadata.ErrorKindIO, "cannot set times",
			platform.WrapFileError(err, path, "set times on"))
		return result
	}
	return result
}

// Label returns the upper-case text-report token for the outcome.
func (r Result) Label() string {
	switch r.Outcome {
	case OutcomeSame:
		return "SAME"
	case OutcomeDifferent:
		return "DIFFERENT"
	case OutcomeUpdated:
		if r.DryRun {
			return "UPDATED (dry-run)"
		}
		return "UPDATED"
	case OutcomeUnresolved:
		return "UNRESOLVED"
	case OutcomeError:
		return "ERROR"
	}
	return fmt.Sprintf("UNKNOWN(%s)", string(r.Outcome))
}
