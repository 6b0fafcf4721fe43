// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/test/identityset"
)

func TestPollSerialization(t *testing.T) {
	require := require.New(t)

	deadline := uint64(2000)
	p := &Poll{
		ID:          7,
		Title:       "lunch?",
		Description: "where do we eat",
		Options:     []string{"pizza", "sushi", "tacos"},
		Creator:     identityset.Principal(0),
		CreatedAt:   1000,
		Deadline:    &deadline,
		IsActive:    true,
		Tally:       []uint64{3, 0, math.MaxUint64 - 5},
	}
	b1, err := p.Serialize()
	require.NoError(err)
	// encoding is deterministic
	b2, err := p.Serialize()
	require.NoError(err)
	require.Equal(b1, b2)

	var p2 Poll
	require.NoError(p2.Deserialize(b1))
	require.Equal(p, &p2)

	p.Deadline = nil
	b1, err = p.Serialize()
	require.NoError(err)
	p2 = Poll{}
	require.NoError(p2.Deserialize(b1))
	require.Nil(p2.Deadline)

	require.Equal(ErrStateDeserialization, errors.Cause(p2.Deserialize([]byte{0xc1})))

	p.Description = strings.Repeat("x", MaxPollSize)
	_, err = p.Serialize()
	require.Equal(ErrStateSerialization, errors.Cause(err))
}

func TestPollHelpers(t *testing.T) {
	require := require.New(t)

	deadline := uint64(100)
	p := &Poll{Options: []string{"a", "b"}, Tally: []uint64{2, 3}, Deadline: &deadline}
	require.Equal(uint64(5), p.TotalVotes())
	require.False(p.Closed(100))
	require.True(p.Closed(101))
	p.Deadline = nil
	require.False(p.Closed(math.MaxUint64))
}

func TestVoteSerialization(t *testing.T) {
	require := require.New(t)

	v := &Vote{PollID: 1, Voter: identityset.Principal(3), OptionIndex: 2, VotedAt: 42}
	b, err := v.Serialize()
	require.NoError(err)
	require.LessOrEqual(len(b), MaxVoteSize)
	var v2 Vote
	require.NoError(v2.Deserialize(b))
	require.Equal(*v, v2)
}

func TestAccount(t *testing.T) {
	require := require.New(t)

	acct := &Account{}
	require.NoError(acct.AddBalance(100))
	require.Equal(ErrNotEnoughBalance, errors.Cause(acct.SubBalance(101)))
	require.NoError(acct.SubBalance(40))
	require.Equal(uint64(60), acct.Balance)
	require.Equal(ErrBalanceOverflow, errors.Cause(acct.AddBalance(math.MaxUint64)))
	require.Equal(uint64(60), acct.Balance)

	// allowances stay sorted by spender
	spenders := []int{5, 1, 3}
	for i, s := range spenders {
		acct.SetAllowance(identityset.Principal(s), uint64(i+1))
	}
	for i := 1; i < len(acct.Allowances); i++ {
		require.Equal(-1, acct.Allowances[i-1].Spender.Compare(acct.Allowances[i].Spender))
	}
	amount, ok := acct.Allowance(identityset.Principal(3))
	require.True(ok)
	require.Equal(uint64(3), amount)
	_, ok = acct.Allowance(identityset.Principal(2))
	require.False(ok)

	acct.SetAllowance(identityset.Principal(3), 30)
	amount, _ = acct.Allowance(identityset.Principal(3))
	require.Equal(uint64(30), amount)

	// zero revokes, revoking a missing spender is a no-op
	acct.SetAllowance(identityset.Principal(3), 0)
	acct.SetAllowance(identityset.Principal(2), 0)
	require.Len(acct.Allowances, 2)
	_, ok = acct.Allowance(identityset.Principal(3))
	require.False(ok)

	acct.LastUpdated = 77
	b, err := acct.Serialize()
	require.NoError(err)
	var acct2 Account
	require.NoError(acct2.Deserialize(b))
	require.Equal(*acct, acct2)

	acct.SetAllowance(identityset.Principal(5), 0)
	acct.SetAllowance(identityset.Principal(1), 0)
	require.Nil(acct.Allowances)
}

func TestTokenInfoAndPendingReward(t *testing.T) {
	require := require.New(t)

	ti := &TokenInfo{Name: "Predi Poll Shares", Symbol: "PPs", Decimals: 8, TotalSupply: 11e8}
	b, err := ti.Serialize()
	require.NoError(err)
	var ti2 TokenInfo
	require.NoError(ti2.Deserialize(b))
	require.Equal(*ti, ti2)

	r := &PendingReward{
		Seq:           4,
		To:            identityset.Principal(1),
		Amount:        10e8,
		Memo:          "poll/1/vote/x",
		Reason:        "vote",
		PollID:        1,
		CreatedAt:     5,
		Attempts:      2,
		NextAttemptAt: 9,
		LastError:     "ledger unreachable",
	}
	b, err = r.Serialize()
	require.NoError(err)
	var r2 PendingReward
	require.NoError(r2.Deserialize(b))
	require.Equal(*r, r2)
}

func TestAccountWithMaxAllowances(t *testing.T) {
	require := require.New(t)

	acct := &Account{Balance: math.MaxUint64, LastUpdated: math.MaxUint64}
	for i := 0; i < MaxAllowances; i++ {
		acct.SetAllowance(principal.SelfAuthenticating([]byte(fmt.Sprintf("spender-%d", i))), math.MaxUint64)
	}
	b, err := acct.Serialize()
	require.NoError(err)
	require.LessOrEqual(len(b), MaxAccountSize)
	var acct2 Account
	require.NoError(acct2.Deserialize(b))
	require.Equal(*acct, acct2)
}
