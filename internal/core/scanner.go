// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"fixdates/internal/metadata"
	"fixdates/internal/observability"
	"fixdates/internal/platform"
	"fixdates/internal/reconcile"
)

// ScanConfig holds configuration for a reconciliation run. It is built once
// and never modified while the run is in progress.
type ScanConfig struct {
	Paths   []string
	Fix     bool
	Dump    bool
	Verbose bool
	DryRun  bool
	RunID   string

	Resolver        metadata.Options
	ExcludePatterns []string

	// Recorder, when non-nil, is told about every write before it happens.
	Recorder reconcile.Recorder
	Observer *observability.StandardObserver
	// OnEntry, when non-nil, is called as soon as each entry is produced.
	OnEntry func(Entry)
}

// EntryKind distinguishes walked directories from processed files.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDirectory
)

// Entry is one step of the walk.
type Entry struct {
	Kind     EntryKind
	Ref      metadata.FileRef
	Resolved metadata.ResolvedTimestamp
	Result   reconcile.Result
}

// Path returns the entry's path.
func (e Entry) Path() string {
	return e.Ref.Path
}

// Summary counts entries by outcome.
type Summary struct {
	Files       int
	Directories int
	Excluded    int
	Outcomes    map[reconcile.Outcome]int
}

// ScanResult holds the results of a reconciliation run.
type ScanResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Fix        bool
	DryRun     bool
	Dump       bool
	Verbose    bool
	Cancelled  bool
	Journaled  bool
	Entries    []Entry
	Summary    Summary
}

// Errors returns the number of files whose outcome is error.
func (r *ScanResult) Errors() int {
	return r.Summary.Outcomes[reconcile.OutcomeError]
}

// Files returns only the file entries.
func (r *ScanResult) Files() []Entry {
	files := make([]Entry, 0, r.Summary.Files)
	for _, e := range r.Entries {
		if e.Kind == EntryFile {
			files = append(files, e)
		}
	}
	return files
}

// Scanner walks paths sequentially and reconciles one file at a time.
type Scanner struct {
	cfg        ScanConfig
	resolver   *metadata.Resolver
	reconciler *reconcile.Reconciler
	result     *ScanResult
}

var _ observability.Observable = (*Scanner)(nil)

// NewScanner creates a scanner for cfg.
func NewScanner(cfg ScanConfig) *Scanner {
	return &Scanner{
		cfg:        cfg,
		resolver:   NewResolver(cfg),
		reconciler: NewReconciler(cfg),
	}
}

// GetComponentName returns the component identifier
func (s *Scanner) GetComponentName() string {
	return "scanner"
}

// Scan runs cfg to completion or until ctx is cancelled.
func Scan(ctx context.Context, cfg ScanConfig) (*ScanResult, error) {
	return NewScanner(cfg).Scan(ctx)
}

// Scan processes every configured path. Per-file failures are recorded in the
// result and never stop the run; the returned error is reserved for an
// unusable configuration.
func (s *Scanner) Scan(ctx context.Context) (*ScanResult, error) {
	if len(s.cfg.Paths) == 0 {
		return nil, errors.New("no paths to scan")
	}
	for _, pattern := range s.cfg.ExcludePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	s.result = &ScanResult{
		RunID:     s.cfg.RunID,
		StartedAt: time.Now(),
		Fix:       s.cfg.Fix,
		DryRun:    s.cfg.DryRun,
		Dump:      s.cfg.Dump,
		Verbose:   s.cfg.Verbose,
		Journaled: s.cfg.Recorder != nil,
		Summary:   Summary{Outcomes: make(map[reconcile.Outcome]int)},
	}

	var finishTiming func(bool, map[string]interface{})
	if s.cfg.Observer != nil {
		finishTiming = s.cfg.Observer.StartTiming(s.GetComponentName(), "scan", "")
	}

	for _, root := range s.cfg.Paths {
		if ctx.Err() != nil {
			s.result.Cancelled = true
			break
		}
		s.scanRoot(ctx, root)
	}

	s.result.FinishedAt = time.Now()
	if d := s.debug(); d != nil {
		d.LogMetric(s.GetComponentName(), "files", s.result.Summary.Files)
		for _, outcome := range reconcile.Outcomes {
			d.LogMetric(s.GetComponentName(), string(outcome), s.result.Summary.Outcomes[outcome])
		}
	}
	if finishTiming != nil {
		finishTiming(!s.result.Cancelled, map[string]interface{}{
			"files":       s.result.Summary.Files,
			"directories": s.result.Summary.Directories,
			"errors":      s.result.Errors(),
		})
	}
	return s.result, nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string) {
	info, err := os.Stat(root)
	if err != nil {
		s.addIOError(root, "cannot access path", err)
		return
	}
	if !info.IsDir() {
		// Explicit file arguments bypass exclusion
		s.processFile(metadata.NewFileRef(root))
		return
	}

	var done func(bool, string)
	if s.debug() != nil {
		done = s.debug().StartStep(s.GetComponentName(), "walk", root)
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			s.result.Cancelled = true
			return fs.SkipAll
		}
		if err != nil {
			s.addIOError(path, "cannot read directory", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if path != root && s.excluded(d.Name()) {
			s.result.Summary.Excluded++
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.addDirectory(path)
			return nil
		}
		s.processFile(metadata.NewFileRef(path))
		return nil
	})
	if walkErr != nil {
		s.addIOError(root, "walk failed", walkErr)
	}

	if done != nil {
		done(!s.result.Cancelled, fmt.Sprintf("%d files", s.result.Summary.Files))
	}
}

func (s *Scanner) excluded(name string) bool {
	for _, pattern := range s.cfg.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) processFile(ref metadata.FileRef) {
	entry := Entry{Kind: EntryFile, Ref: ref}

	resolved, err := s.resolver.ResolveRef(ref)
	entry.Resolved = resolved
	if err != nil {
		entry.Result = reconcile.Result{
			Path:       ref.Path,
			Outcome:    reconcile.OutcomeError,
			Provenance: metadata.ProvenanceNone,
			Err:        err,
		}
	} else {
		entry.Result = s.reconciler.Reconcile(ref.Path, resolved, s.cfg.Fix)
	}

	s.add(entry)
}

func (s *Scanner) addDirectory(path string) {
	s.add(Entry{Kind: EntryDirectory, Ref: metadata.FileRef{Path: path}})
}

func (s *Scanner) addIOError(path, message string, err error) {
	s.add(Entry{
		Kind:     EntryFile,
		Ref:      metadata.NewFileRef(path),
		Resolved: metadata.Unresolved(message),
		Result: reconcile.Result{
			Path:       path,
			Outcome:    reconcile.OutcomeError,
			Provenance: metadata.ProvenanceNone,
			Err: metadata.NewMetadataError(path, metadata.ErrorKindIO, message,
				platform.WrapFileError(err, path, "read")),
		},
	})
}

func (s *Scanner) add(entry Entry) {
	switch entry.Kind {
	case EntryDirectory:
		s.result.Summary.Directories++
		if d := s.debug(); d != nil {
			d.LogDetail(s.GetComponentName(), "Found directory: "+entry.Path())
		}
	case EntryFile:
		s.result.Summary.Files++
		s.result.Summary.Outcomes[entry.Result.Outcome]++
	}
	s.result.Entries = append(s.result.Entries, entry)
	if s.cfg.OnEntry != nil {
		s.cfg.OnEntry(entry)
	}
}

func (s *Scanner) debug() *observability.DebugObserver {
	if s.cfg.Observer == nil {
		return nil
	}
	return s.cfg.Observer.DebugObserver
}
