// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/protocol"
	"github.com/iotexproject/pollrush/state"
	"github.com/iotexproject/pollrush/test/identityset"
	"github.com/iotexproject/pollrush/testutil"
)

var (
	_minter = identityset.Principal(31)
	_alice  = identityset.Principal(0)
	_bob    = identityset.Principal(1)
	_carol  = identityset.Principal(2)
	_dave   = identityset.Principal(3)
)

func as(p principal.Principal) context.Context {
	return protocol.WithCaller(context.Background(), p)
}

func newTestLedger(t *testing.T, kv db.KVStore) *Ledger {
	l := New(kv, WithMinters(_minter), WithClock(testutil.NewMockClock()))
	require.NoError(t, l.Start(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, l.Stop(context.Background()))
	})
	return l
}

func requireBalance(t *testing.T, l *Ledger, p principal.Principal, expected uint64) {
	balance, err := l.BalanceOf(p)
	require.NoError(t, err)
	require.Equal(t, expected, balance)
}

func TestInitialTokenInfo(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t, db.NewMemKVStore())

	info, err := l.TokenInfo()
	require.NoError(err)
	require.Equal(DefaultTokenInfo, info)
	require.Equal("PPs", info.Symbol)
	require.Equal(uint8(8), info.Decimals)
	requireBalance(t, l, _alice, 0)
	_, err = l.Account(_alice)
	require.Equal(ErrAccountNotFound, errors.Cause(err))
	require.NoError(l.Audit())
}

func TestMint(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t, db.NewMemKVStore())

	err := l.Mint(as(_alice), _alice, 1000)
	require.Equal(ErrUnauthorized, errors.Cause(err))
	err = l.Mint(as(principal.Anonymous), _alice, 1000)
	require.Equal(ErrUnauthorized, errors.Cause(err))
	requireBalance(t, l, _alice, 0)

	require.NoError(l.Mint(as(_minter), _alice, 1000))
	requireBalance(t, l, _alice, 1000)
	info, err := l.TokenInfo()
	require.NoError(err)
	require.Equal(uint64(1000), info.TotalSupply)
	acct, err := l.Account(_alice)
	require.NoError(err)
	require.Equal(uint64(testutil.Epoch.UnixNano()), acct.LastUpdated)

	// a memo is applied once
	require.NoError(l.Mint(as(_minter), _bob, 10, WithMemo("poll/1/create")))
	require.NoError(l.Mint(as(_minter), _bob, 10, WithMemo("poll/1/create")))
	requireBalance(t, l, _bob, 10)
	require.NoError(l.Mint(as(_minter), _bob, 10, WithMemo("poll/2/create")))
	requireBalance(t, l, _bob, 20)

	// supply overflow leaves state untouched
	err = l.Mint(as(_minter), _carol, math.MaxUint64)
	require.Equal(ErrOverflow, errors.Cause(err))
	requireBalance(t, l, _carol, 0)
	info, err = l.TokenInfo()
	require.NoError(err)
	require.Equal(uint64(1020), info.TotalSupply)
	require.NoError(l.Audit())
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t, db.NewMemKVStore())

	require.NoError(l.Mint(as(_minter), _alice, 1000))
	require.NoError(l.Transfer(as(_alice), _bob, 400))
	requireBalance(t, l, _alice, 600)
	requireBalance(t, l, _bob, 400)
	info, err := l.TokenInfo()
	require.NoError(err)
	require.Equal(uint64(1000), info.TotalSupply)

	err = l.Transfer(as(_alice), _bob, 700)
	require.Equal(ErrInsufficientBalance, errors.Cause(err))
	requireBalance(t, l, _alice, 600)
	requireBalance(t, l, _bob, 400)

	// transfer to self keeps the balance
	require.NoError(l.Transfer(as(_alice), _alice, 600))
	requireBalance(t, l, _alice, 600)
	err = l.Transfer(as(_alice), _alice, 601)
	require.Equal(ErrInsufficientBalance, errors.Cause(err))

	// unknown sender
	err = l.Transfer(as(_dave), _alice, 1)
	require.Equal(ErrInsufficientBalance, errors.Cause(err))
	require.NoError(l.Transfer(as(_dave), _alice, 0))
	require.NoError(l.Audit())
}

func TestTransferOverflow(t *testing.T) {
	require := require.New(t)
	kv := db.NewMemKVStore()
	l := newTestLedger(t, kv)

	require.NoError(l.Mint(as(_minter), _alice, math.MaxUint64))
	// forge a second large balance behind the ledger's back
	acct, err := l.Account(_alice)
	require.NoError(err)
	data, err := acct.Serialize()
	require.NoError(err)
	require.NoError(kv.Put(AccountsNamespace, _bob.Bytes(), data))

	err = l.Transfer(as(_alice), _bob, 1)
	require.Equal(ErrOverflow, errors.Cause(err))
	requireBalance(t, l, _alice, math.MaxUint64)
	require.Equal(ErrSupplyMismatch, errors.Cause(l.Audit()))
}

func TestApproveAndTransferFrom(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t, db.NewMemKVStore())

	require.NoError(l.Mint(as(_minter), _alice, 600))
	err := l.TransferFrom(as(_carol), _alice, _dave, 1)
	require.Equal(ErrNoAllowance, errors.Cause(err))

	require.NoError(l.Approve(as(_alice), _carol, 300))
	allowance, err := l.Allowance(_alice, _carol)
	require.NoError(err)
	require.Equal(uint64(300), allowance)

	require.NoError(l.TransferFrom(as(_carol), _alice, _dave, 200))
	requireBalance(t, l, _alice, 400)
	requireBalance(t, l, _dave, 200)
	allowance, err = l.Allowance(_alice, _carol)
	require.NoError(err)
	require.Equal(uint64(100), allowance)

	err = l.TransferFrom(as(_carol), _alice, _dave, 200)
	require.Equal(ErrInsufficientAllowance, errors.Cause(err))
	requireBalance(t, l, _alice, 400)
	requireBalance(t, l, _dave, 200)

	// allowance above the balance
	require.NoError(l.Approve(as(_alice), _carol, 1000))
	err = l.TransferFrom(as(_carol), _alice, _dave, 500)
	require.Equal(ErrInsufficientBalance, errors.Cause(err))
	allowance, err = l.Allowance(_alice, _carol)
	require.NoError(err)
	require.Equal(uint64(1000), allowance)

	// spending the whole allowance leaves a zero allowance, which reads as no allowance
	require.NoError(l.Approve(as(_alice), _carol, 50))
	require.NoError(l.TransferFrom(as(_carol), _alice, _alice, 50))
	requireBalance(t, l, _alice, 400)
	err = l.TransferFrom(as(_carol), _alice, _dave, 1)
	require.Equal(ErrNoAllowance, errors.Cause(err))

	// zero revokes
	require.NoError(l.Approve(as(_alice), _bob, 10))
	require.NoError(l.Approve(as(_alice), _bob, 0))
	err = l.TransferFrom(as(_bob), _alice, _bob, 1)
	require.Equal(ErrNoAllowance, errors.Cause(err))

	// approving creates the account
	require.NoError(l.Approve(as(_bob), _alice, 5))
	acct, err := l.Account(_bob)
	require.NoError(err)
	require.Zero(acct.Balance)
	require.Len(acct.Allowances, 1)
	require.NoError(l.Audit())
}

func TestMintMemoPerMinter(t *testing.T) {
	require := require.New(t)
	l := New(db.NewMemKVStore(), WithMinters(_minter, _dave), WithClock(testutil.NewMockClock()))
	require.NoError(l.Start(context.Background()))
	defer func() {
		require.NoError(l.Stop(context.Background()))
	}()

	// two poll services sharing a ledger may hand out the same poll ids
	require.NoError(l.Mint(as(_minter), _alice, 100, WithMemo("poll/1/create")))
	require.NoError(l.Mint(as(_dave), _alice, 100, WithMemo("poll/1/create")))
	requireBalance(t, l, _alice, 200)
	require.NoError(l.Mint(as(_dave), _alice, 100, WithMemo("poll/1/create")))
	requireBalance(t, l, _alice, 200)
	require.NoError(l.Audit())
}

func TestAllowanceCap(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t, db.NewMemKVStore())

	spender := func(i int) principal.Principal {
		return principal.SelfAuthenticating([]byte(fmt.Sprintf("spender-%d", i)))
	}
	for i := 0; i < state.MaxAllowances; i++ {
		require.NoError(l.Approve(as(_alice), spender(i), math.MaxUint64-uint64(i)))
	}
	err := l.Approve(as(_alice), spender(state.MaxAllowances), 1000)
	require.Equal(ErrTooManyAllowances, errors.Cause(err))
	allowance, err := l.Allowance(_alice, spender(state.MaxAllowances))
	require.NoError(err)
	require.Zero(allowance)

	// existing spenders can still be updated or revoked, revoking frees a slot
	require.NoError(l.Approve(as(_alice), spender(0), 5))
	require.NoError(l.Approve(as(_alice), spender(state.MaxAllowances), 0))
	require.NoError(l.Approve(as(_alice), spender(1), 0))
	require.NoError(l.Approve(as(_alice), spender(state.MaxAllowances), 1000))
	acct, err := l.Account(_alice)
	require.NoError(err)
	require.Len(acct.Allowances, state.MaxAllowances)
	allowance, err = l.Allowance(_alice, spender(2))
	require.NoError(err)
	require.Equal(uint64(math.MaxUint64-2), allowance)
}

func TestLedgerRestart(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	path, err := testutil.PathOfTempFile("ledger.db")
	require.NoError(err)
	defer testutil.CleanupPath(t, path)
	cfg := db.DefaultConfig
	cfg.DbPath = path

	l := New(db.NewBoltDB(cfg), WithMinters(_minter))
	require.NoError(l.Start(ctx))
	require.NoError(l.Mint(as(_minter), _alice, 1000, WithMemo("m1")))
	require.NoError(l.Transfer(as(_alice), _bob, 250))
	require.NoError(l.Approve(as(_bob), _carol, 7))
	require.NoError(l.Stop(ctx))

	l = New(db.NewBoltDB(cfg), WithMinters(_minter))
	require.NoError(l.Start(ctx))
	defer l.Stop(ctx)
	requireBalance(t, l, _alice, 750)
	requireBalance(t, l, _bob, 250)
	allowance, err := l.Allowance(_bob, _carol)
	require.NoError(err)
	require.Equal(uint64(7), allowance)
	info, err := l.TokenInfo()
	require.NoError(err)
	require.Equal(uint64(1000), info.TotalSupply)
	// the memo survived the restart
	require.NoError(l.Mint(as(_minter), _alice, 1000, WithMemo("m1")))
	requireBalance(t, l, _alice, 750)
	require.NoError(l.Audit())
}

func TestConcurrentTransfers(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t, db.NewMemKVStore())

	n := 8
	for i := 0; i < n; i++ {
		require.NoError(l.Mint(as(_minter), identityset.Principal(i), 100))
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = l.Transfer(as(identityset.Principal(i)), identityset.Principal((i+j+1)%n), uint64(j))
			}
		}(i)
	}
	wg.Wait()
	require.NoError(l.Audit())
	info, err := l.TokenInfo()
	require.NoError(err)
	require.Equal(uint64(100*n), info.TotalSupply)
}

func TestLocalMinter(t *testing.T) {
	require := require.New(t)
	l := newTestLedger(t, db.NewMemKVStore())

	m := NewLocalMinter(l, _minter)
	ctx := protocol.WithCallerCtx(context.Background(), protocol.CallerCtx{Caller: _alice, RequestID: "r"})
	require.NoError(m.Mint(ctx, _alice, 10*Unit, "poll/1/vote/a"))
	require.NoError(m.Mint(ctx, _alice, 10*Unit, "poll/1/vote/a"))
	requireBalance(t, l, _alice, 10*Unit)

	err := NewLocalMinter(l, _bob).Mint(context.Background(), _bob, 1, "x")
	require.Equal(ErrUnauthorized, errors.Cause(err))
}
