// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fanout

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWaitsForAll(t *testing.T) {
	var done int32
	pipelines := make([]Pipeline, 5)
	for i := range pipelines {
		pipelines[i] = func(ctx context.Context) error {
			atomic.AddInt32(&done, 1)
			return nil
		}
	}
	require.NoError(t, Run(context.Background(), pipelines...))
	require.EqualValues(t, 5, done)
}

func TestRunPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(),
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return boom },
	)
	require.ErrorIs(t, err, boom)
}

func TestRunCancelsRemainingOnError(t *testing.T) {
	boom := errors.New("boom")
	var canceled int32
	err := Run(context.Background(),
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error {
			<-ctx.Done()
			atomic.AddInt32(&canceled, 1)
			return ctx.Err()
		},
	)
	require.ErrorIs(t, err, boom)
	require.EqualValues(t, 1, canceled)
}
