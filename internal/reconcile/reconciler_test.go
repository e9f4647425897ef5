// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"fixdates/internal/metadata"
	"fixdates/internal/platform"
	"fixdates/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderFunc func(path string, oldUnix, newUnix int64) error

func (f recorderFunc) Record(path string, oldUnix, newUnix int64) error {
	return f(path, oldUnix, newUnix)
}

func exifAt(unix int64) metadata.ResolvedTimestamp {
	return metadata.ResolvedTimestamp{Unix: unix, Provenance: metadata.ProvenanceExif}
}

func TestReconcile(t *testing.T) {
	const metaUnix = 1600000000
	base := time.Unix(metaUnix, 0)

	tests := []struct {
		name      string
		mtime     time.Time
		resolved  metadata.ResolvedTimestamp
		fix       bool
		want      Outcome
		wantMtime int64
	}{
		{"same", base, exifAt(metaUnix), false, OutcomeSame, metaUnix},
		{"same in fix mode", base, exifAt(metaUnix), true, OutcomeSame, metaUnix},
		{"sub-second difference is same", base.Add(900 * time.Millisecond), exifAt(metaUnix), true, OutcomeSame, metaUnix},
		{"different", base.Add(time.Hour), exifAt(metaUnix), false, OutcomeDifferent, metaUnix + 3600},
		{"updated", base.Add(time.Hour), exifAt(metaUnix), true, OutcomeUpdated, metaUnix},
		{"unresolved", base.Add(time.Hour), metadata.Unresolved(metadata.ReasonNoSource), true, OutcomeUnresolved, metaUnix + 3600},
		{"zero value unresolved", base, metadata.ResolvedTimestamp{}, true, OutcomeUnresolved, metaUnix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "a.jpg", []byte("x"), tt.mtime)

			got := NewReconciler(Options{}, nil).Reconcile(path, tt.resolved, tt.fix)
			assert.Equal(t, tt.want, got.Outcome)
			assert.NoError(t, got.Err)
			assert.Equal(t, tt.wantMtime, testutil.ModTime(t, path))
		})
	}
}

func TestReconcile_FixIsIdempotent(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "a.jpg", []byte("x"), time.Unix(1700000000, 0))
	r := NewReconciler(Options{}, nil)

	first := r.Reconcile(path, exifAt(1600000000), true)
	require.Equal(t, OutcomeUpdated, first.Outcome)
	assert.Equal(t, int64(1700000000), first.FileUnix)
	assert.Equal(t, int64(1600000000), first.MetadataUnix)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1600000000), info.ModTime().Unix())

	second := r.Reconcile(path, exifAt(1600000000), true)
	assert.Equal(t, OutcomeSame, second.Outcome)
}

func TestReconcile_DryRun(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "a.jpg", []byte("x"), time.Unix(1700000000, 0))
	recorded := false
	r := NewReconciler(Options{DryRun: true, Recorder: recorderFunc(func(string, int64, int64) error {
		recorded = true
		return nil
	})}, nil)

	got := r.Reconcile(path, exifAt(1600000000), true)
	assert.Equal(t, OutcomeUpdated, got.Outcome)
	assert.True(t, got.DryRun)
	assert.Equal(t, "UPDATED (dry-run)", got.Label())
	assert.False(t, recorded)
	assert.Equal(t, int64(1700000000), testutil.ModTime(t, path))
}

func TestReconcile_RecorderRunsBeforeWrite(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "a.jpg", []byte("x"), time.Unix(1700000000, 0))

	var gotOld, gotNew int64
	r := NewReconciler(Options{Recorder: recorderFunc(func(p string, oldUnix, newUnix int64) error {
		gotOld, gotNew = oldUnix, newUnix
		assert.Equal(t, int64(1700000000), testutil.ModTime(t, p), "record must precede the write")
		return nil
	})}, nil)

	got := r.Reconcile(path, exifAt(1600000000), true)
	require.Equal(t, OutcomeUpdated, got.Outcome)
	assert.Equal(t, int64(1700000000), gotOld)
	assert.Equal(t, int64(1600000000), gotNew)
}

func TestReconcile_RecorderFailureSkipsWrite(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "a.jpg", []byte("x"), time.Unix(1700000000, 0))
	r := NewReconciler(Options{Recorder: recorderFunc(func(string, int64, int64) error {
		return errors.New("disk full")
	})}, nil)

	got := r.Reconcile(path, exifAt(1600000000), true)
	assert.Equal(t, OutcomeError, got.Outcome)
	assert.True(t, metadata.IsIOFailure(got.Err))
	assert.Equal(t, int64(1700000000), testutil.ModTime(t, path))
}

func TestReconcile_StatError(t *testing.T) {
	got := NewReconciler(Options{}, nil).Reconcile("/does/not/exist.jpg", exifAt(1), false)
	assert.Equal(t, OutcomeError, got.Outcome)
	assert.True(t, metadata.IsIOFailure(got.Err))
	assert.True(t, errors.Is(got.Err, os.ErrNotExist))
	assert.False(t, got.Compared())
}

func TestReconcile_ChtimesError(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "a.jpg", []byte("x"), time.Unix(1700000000, 0))
	r := NewReconciler(Options{}, nil)
	r.chtimes = func(string, time.Time, time.Time) error {
		return &os.PathError{Op: "chtimes", Path: path, Err: syscall.EPERM}
	}

	got := r.Reconcile(path, exifAt(1600000000), true)
	assert.Equal(t, OutcomeError, got.Outcome)
	assert.True(t, errors.Is(got.Err, syscall.EPERM))
	var fe *platform.FileError
	require.True(t, errors.As(got.Err, &fe))
	assert.NotEmpty(t, fe.Suggestion)
}

func TestResultLabel(t *testing.T) {
	assert.Equal(t, "SAME", Result{Outcome: OutcomeSame}.Label())
	assert.Equal(t, "DIFFERENT", Result{Outcome: OutcomeDifferent}.Label())
	assert.Equal(t, "UPDATED", Result{Outcome: OutcomeUpdated}.Label())
	assert.Equal(t, "UNRESOLVED", Result{Outcome: OutcomeUnresolved}.Label())
	assert.Equal(t, "ERROR", Result{Outcome: OutcomeError}.Label())
}
