// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	name  string
	log   *[]string
	onErr error
}

func (r *recorder) Start(context.Context) error {
	*r.log = append(*r.log, "start "+r.name)
	return nil
}

func (r *recorder) Stop(context.Context) error {
	*r.log = append(*r.log, "stop "+r.name)
	return r.onErr
}

func TestLifecycle(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var (
		calls []string
		lc    Lifecycle
	)
	lc.Add(&recorder{name: "a", log: &calls})
	lc.AddModels(struct{}{}, &recorder{name: "b", log: &calls})
	require.NoError(lc.OnStart(ctx))
	require.NoError(lc.OnStop(ctx))
	require.Equal([]string{"start a", "start b", "stop b", "stop a"}, calls)
}

func TestLifecycleWithError(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	var (
		calls []string
		lc    Lifecycle
		err   = errors.New("error")
	)
	lc.AddModels(&recorder{name: "a", log: &calls}, &recorder{name: "b", log: &calls, onErr: err})
	require.NoError(lc.OnStart(ctx))
	require.EqualError(lc.OnStop(ctx), err.Error())
	// a is still stopped after b failed
	require.Equal("stop a", calls[len(calls)-1])
}

func TestReadiness(t *testing.T) {
	require := require.New(t)

	var r Readiness
	require.False(r.IsReady())
	require.Equal(ErrWrongState, r.TurnOff())
	require.NoError(r.TurnOn())
	require.True(r.IsReady())
	require.Equal(ErrWrongState, r.TurnOn())
	require.NoError(r.TurnOff())
	require.False(r.IsReady())
}
