// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fixdates/internal/metadata"
	"fixdates/internal/reconcile"
)

// NewResolver builds the metadata resolver for cfg. Dumping is driven by
// cfg.Dump regardless of the resolver options passed in.
func NewResolver(cfg ScanConfig) *metadata.Resolver {
	opts := cfg.Resolver
	opts.Dump = cfg.Dump
	return metadata.NewResolver(opts, cfg.Observer)
}

// NewReconciler builds the timestamp reconciler for cfg.
func NewReconciler(cfg ScanConfig) *reconcile.Reconciler {
	return reconcile.NewReconciler(reconcile.Options{
		DryRun:   cfg.DryRun,
		Recorder: cfg.Recorder,
	}, cfg.Observer)
}
