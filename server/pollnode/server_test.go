// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package pollnode

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/pollrush/api"
	"github.com/iotexproject/pollrush/config"
	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/poll"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/protocol"
	"github.com/iotexproject/pollrush/test/identityset"
	"github.com/iotexproject/pollrush/testutil"
)

func testConfig(t *testing.T) config.Config {
	sp := identityset.Principal(31).String()
	cfg := config.Default
	cfg.DB.DBType = db.DBBolt
	ledgerPath, err := testutil.PathOfTempFile("ledger")
	require.NoError(t, err)
	pollPath, err := testutil.PathOfTempFile("poll")
	require.NoError(t, err)
	t.Cleanup(func() {
		testutil.CleanupPath(t, ledgerPath)
		testutil.CleanupPath(t, pollPath)
	})
	cfg.Ledger.DBPath = ledgerPath
	cfg.Ledger.Minters = []string{sp}
	cfg.Poll.DBPath = pollPath
	cfg.Poll.Principal = sp
	cfg.API.Port = 0
	for _, validate := range config.Validates {
		require.NoError(t, validate(cfg))
	}
	return cfg
}

func TestServer(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	cfg := testConfig(t)

	svr, err := NewServer(cfg)
	require.NoError(err)
	require.NoError(svr.Start(ctx))
	endpoint := fmt.Sprintf("http://%s", svr.APIAddr())

	alice := identityset.Principal(0)
	res, err := api.NewClient(endpoint, alice).Call(ctx, api.PollPath, "create_poll", map[string]any{
		"title":   "lunch",
		"options": []string{"noodles", "rice"},
	})
	require.NoError(err)
	require.Equal(uint64(1), res.Get("pollId").Uint())
	balance, err := api.NewLedgerClient(endpoint, principal.Anonymous).BalanceOf(ctx, alice)
	require.NoError(err)
	require.Equal(poll.CreateReward, balance)

	_, err = api.NewClient(endpoint, alice).Call(ctx, api.PollPath, "vote", map[string]any{"pollId": 1, "optionIndex": 5})
	require.Equal(poll.ErrInvalidOption, errors.Cause(err))
	require.NoError(svr.Stop(ctx))

	// state survives a restart of the node
	svr, err = NewServer(cfg)
	require.NoError(err)
	require.NoError(svr.Start(ctx))
	defer svr.Stop(ctx)
	p, err := svr.PollService().GetPoll(1)
	require.NoError(err)
	require.Equal("lunch", p.Title)
	balance, err = svr.Ledger().BalanceOf(alice)
	require.NoError(err)
	require.Equal(poll.CreateReward, balance)
}

func TestRemoteLedger(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	ledgerCfg := testConfig(t)
	ledgerCfg.Poll.Enabled = false
	ledgerNode, err := NewServer(ledgerCfg)
	require.NoError(err)
	require.NoError(ledgerNode.Start(ctx))
	defer ledgerNode.Stop(ctx)
	require.Nil(ledgerNode.PollService())

	pollCfg := testConfig(t)
	pollCfg.Ledger.Enabled = false
	pollCfg.Poll.LedgerEndpoint = fmt.Sprintf("http://%s", ledgerNode.APIAddr())
	require.NoError(config.ValidatePoll(pollCfg))
	pollNode, err := NewServer(pollCfg)
	require.NoError(err)
	require.NoError(pollNode.Start(ctx))
	defer pollNode.Stop(ctx)
	require.Nil(pollNode.Ledger())

	bob := identityset.Principal(1)
	r, err := pollNode.PollService().CreatePoll(asCaller(bob), poll.CreatePollArgs{Title: "t", Options: []string{"a", "b"}})
	require.NoError(err)
	require.NoError(r.RewardErr)
	balance, err := ledgerNode.Ledger().BalanceOf(bob)
	require.NoError(err)
	require.Equal(poll.CreateReward, balance)
}

func asCaller(p principal.Principal) context.Context {
	return protocol.WithCaller(context.Background(), p)
}
