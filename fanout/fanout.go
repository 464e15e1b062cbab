// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fanout runs independent decode/encode pipelines concurrently,
// generalizing the teacher's internal/start.RunAll from "run server
// subsystems to completion or first error" to "run independent codec
// pipelines to completion or first error" (spec.md §5: "multiple
// pipelines may run in parallel on separate worker threads; they share
// only the immutable codec cache").
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pipeline is one independent unit of work: a stream decode, a stream
// encode, or any other codec operation that only needs ctx for
// cancellation.
type Pipeline func(ctx context.Context) error

// Run starts every pipeline concurrently and waits for all of them to
// finish, returning the first error (if any) and canceling the shared
// context for the rest. Pipelines must not share mutable state: the only
// resource they may safely share is a process-wide codec.Registry, which
// is append-only and tolerates concurrent construction (spec.md §5).
func Run(ctx context.Context, pipelines ...Pipeline) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, p := range pipelines {
		p := p
		group.Go(func() error { return p(ctx) })
	}
	return group.Wait()
}
