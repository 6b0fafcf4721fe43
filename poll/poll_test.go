// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package poll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/ledger"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/protocol"
	"github.com/iotexproject/pollrush/state"
	"github.com/iotexproject/pollrush/test/identityset"
	"github.com/iotexproject/pollrush/testutil"
)

var (
	_service = identityset.Principal(31)
	_alice   = identityset.Principal(0)
	_bob     = identityset.Principal(1)
	_carol   = identityset.Principal(2)
)

func as(p principal.Principal) context.Context {
	return protocol.WithCaller(context.Background(), p)
}

type fixture struct {
	clk    *clock.Mock
	ledger *ledger.Ledger
	svc    *Service
}

func newFixture(t *testing.T, pollKV, ledgerKV db.KVStore) *fixture {
	clk := testutil.NewMockClock()
	l := ledger.New(ledgerKV, ledger.WithMinters(_service), ledger.WithClock(clk))
	require.NoError(t, l.Start(context.Background()))
	svc := NewService(pollKV, ledger.NewLocalMinter(l, _service), WithClock(clk))
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() {
		require.NoError(t, svc.Stop(context.Background()))
		require.NoError(t, l.Stop(context.Background()))
	})
	return &fixture{clk: clk, ledger: l, svc: svc}
}

func (f *fixture) now() uint64 {
	return testutil.TimestampNowFromClock(f.clk)
}

func (f *fixture) balance(t *testing.T, p principal.Principal) uint64 {
	b, err := f.ledger.BalanceOf(p)
	require.NoError(t, err)
	return b
}

func deadline(d uint64) *uint64 { return &d }

func TestCreateAndVote(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	r, err := f.svc.CreatePoll(as(_alice), CreatePollArgs{
		Title:    "T",
		Options:  []string{"x", "y", "z"},
		Deadline: deadline(f.now() + 10_000_000_000),
	})
	require.NoError(err)
	require.NoError(r.RewardErr)
	require.Equal(uint64(1), r.PollID)
	require.Equal(CreateReward, r.Reward)
	require.Equal(uint64(10_000_000_000), f.balance(t, _alice))

	p, err := f.svc.GetPoll(1)
	require.NoError(err)
	require.Equal("T", p.Title)
	require.Equal(_alice, p.Creator)
	require.Equal(f.now(), p.CreatedAt)
	require.True(p.IsActive)
	require.Equal([]uint64{0, 0, 0}, p.Tally)

	r, err = f.svc.Vote(as(_bob), 1, 2)
	require.NoError(err)
	require.NoError(r.RewardErr)
	require.Equal(uint64(1_000_000_000), f.balance(t, _bob))

	votes, err := f.svc.GetVotes(1)
	require.NoError(err)
	require.Len(votes, 1)
	require.Equal(_bob, votes[0].Voter)
	require.Equal(uint32(2), votes[0].OptionIndex)
	p, err = f.svc.GetPoll(1)
	require.NoError(err)
	require.Equal([]uint64{0, 0, 1}, p.Tally)

	// a second vote is rejected and rewards nothing
	_, err = f.svc.Vote(as(_bob), 1, 0)
	require.Equal(ErrAlreadyVoted, errors.Cause(err))
	require.Equal(uint64(1_000_000_000), f.balance(t, _bob))
	p, err = f.svc.GetPoll(1)
	require.NoError(err)
	require.Equal([]uint64{0, 0, 1}, p.Tally)
	require.NoError(f.ledger.Audit())
}

func TestVoteRules(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	_, err := f.svc.Vote(as(_bob), 1, 0)
	require.Equal(ErrPollNotFound, errors.Cause(err))

	_, err = f.svc.CreatePoll(as(_alice), CreatePollArgs{
		Title:    "deadline",
		Options:  []string{"a", "b", "c"},
		Deadline: deadline(f.now() + 5),
	})
	require.NoError(err)

	_, err = f.svc.Vote(as(_bob), 1, 3)
	require.Equal(ErrInvalidOption, errors.Cause(err))

	// voting at the deadline is still allowed
	f.clk.Add(5)
	_, err = f.svc.Vote(as(_bob), 1, 0)
	require.NoError(err)
	f.clk.Add(1)
	_, err = f.svc.Vote(as(_carol), 1, 0)
	require.Equal(ErrDeadlinePassed, errors.Cause(err))
	_, err = f.svc.Vote(as(_alice), 1, 1)
	require.Equal(ErrDeadlinePassed, errors.Cause(err))

	votes, err := f.svc.GetVotes(1)
	require.NoError(err)
	require.Len(votes, 1)
}

func TestCreatePollValidation(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	options := func(n int) []string {
		o := make([]string, n)
		for i := range o {
			o[i] = string(rune('a' + i))
		}
		return o
	}
	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}
	for _, c := range []struct {
		name string
		args CreatePollArgs
		err  error
	}{
		{"one option", CreatePollArgs{Title: "t", Options: options(1)}, ErrInvalidOption},
		{"21 options", CreatePollArgs{Title: "t", Options: options(21)}, ErrInvalidOption},
		{"2 options", CreatePollArgs{Title: "t", Options: options(2)}, nil},
		{"20 options", CreatePollArgs{Title: "t", Options: options(20)}, nil},
		{"empty title", CreatePollArgs{Options: options(2)}, ErrValidation},
		{"long title", CreatePollArgs{Title: long(MaxTitleLength + 1), Options: options(2)}, ErrValidation},
		{"max title", CreatePollArgs{Title: long(MaxTitleLength), Options: options(2)}, nil},
		{"long description", CreatePollArgs{Title: "t", Description: long(MaxDescriptionLength + 1), Options: options(2)}, ErrValidation},
		{"empty option", CreatePollArgs{Title: "t", Options: []string{"a", ""}}, ErrValidation},
		{"long option", CreatePollArgs{Title: "t", Options: []string{"a", long(MaxOptionLength + 1)}}, ErrValidation},
		{"past deadline", CreatePollArgs{Title: "t", Options: options(2), Deadline: deadline(f.now())}, ErrValidation},
		{"future deadline", CreatePollArgs{Title: "t", Options: options(2), Deadline: deadline(f.now() + 1)}, nil},
	} {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.svc.CreatePoll(as(_alice), c.args)
			require.Equal(c.err, errors.Cause(err))
		})
	}
}

func TestIDsAreMonotonic(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	args := CreatePollArgs{Title: "same", Options: []string{"a", "b"}}
	var last uint64
	for i := 0; i < 5; i++ {
		r, err := f.svc.CreatePoll(as(_alice), args)
		require.NoError(err)
		require.Greater(r.PollID, last)
		last = r.PollID
	}
	polls, err := f.svc.GetPolls("")
	require.NoError(err)
	require.Len(polls, 5)
	require.Equal(5*CreateReward, f.balance(t, _alice))
}

func TestInactivePoll(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	_, err := f.svc.CreatePoll(as(_alice), CreatePollArgs{Title: "t", Options: []string{"a", "b"}})
	require.NoError(err)
	p, err := f.svc.GetPoll(1)
	require.NoError(err)
	p.IsActive = false
	data, err := p.Serialize()
	require.NoError(err)
	require.NoError(f.svc.kv.Put(PollsNamespace, pollKey(1), data))

	_, err = f.svc.Vote(as(_bob), 1, 0)
	require.Equal(ErrPollInactive, errors.Cause(err))
}

func TestConcurrentVotes(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	_, err := f.svc.CreatePoll(as(_alice), CreatePollArgs{Title: "t", Options: []string{"a", "b"}})
	require.NoError(err)

	const voters = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes = make(map[principal.Principal]int)
		others    int
	)
	for i := 0; i < voters; i++ {
		voter := identityset.Principal(i + 1)
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func(option uint32) {
				defer wg.Done()
				_, err := f.svc.Vote(as(voter), 1, option)
				mu.Lock()
				defer mu.Unlock()
				switch errors.Cause(err) {
				case nil:
					successes[voter]++
				case ErrAlreadyVoted:
				default:
					others++
				}
			}(uint32(j % 2))
		}
	}
	wg.Wait()

	require.Zero(others)
	require.Len(successes, voters)
	for _, n := range successes {
		require.Equal(1, n)
	}
	votes, err := f.svc.GetVotes(1)
	require.NoError(err)
	require.Len(votes, voters)
	p, err := f.svc.GetPoll(1)
	require.NoError(err)
	require.Equal(uint64(voters), p.TotalVotes())
	for _, v := range votes {
		require.Less(int(v.OptionIndex), len(p.Options))
		require.Equal(VoteReward, f.balance(t, v.Voter))
	}
	require.NoError(f.ledger.Audit())
}

func TestQueries(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	for i, creator := range []principal.Principal{_alice, _bob, _alice} {
		_, err := f.svc.CreatePoll(as(creator), CreatePollArgs{Title: "t", Options: []string{"a", "b", "c"}})
		require.NoError(err)
		f.clk.Add(time.Duration(i+1) * time.Second)
	}
	// poll 2 gets two votes, poll 3 one
	for _, v := range []struct {
		voter principal.Principal
		poll  uint64
	}{{_carol, 2}, {_alice, 2}, {_carol, 3}} {
		_, err := f.svc.Vote(as(v.voter), v.poll, 0)
		require.NoError(err)
	}

	ids := func(polls []*state.Poll) []uint64 {
		out := make([]uint64, 0, len(polls))
		for _, p := range polls {
			out = append(out, p.ID)
		}
		return out
	}
	polls, err := f.svc.GetPolls("")
	require.NoError(err)
	require.Equal([]uint64{1, 2, 3}, ids(polls))
	polls, err = f.svc.GetPolls(SortByTime)
	require.NoError(err)
	require.Equal([]uint64{3, 2, 1}, ids(polls))
	polls, err = f.svc.GetPolls(SortByPopularity)
	require.NoError(err)
	require.Equal([]uint64{2, 3, 1}, ids(polls))

	polls, err = f.svc.GetMyPolls(_alice)
	require.NoError(err)
	require.Equal([]uint64{1, 3}, ids(polls))
	polls, err = f.svc.GetMyPolls(_service)
	require.NoError(err)
	require.Empty(polls)

	polls, err = f.svc.GetMyAttendance(_carol)
	require.NoError(err)
	require.Equal([]uint64{2, 3}, ids(polls))
	polls, err = f.svc.GetMyAttendance(_bob)
	require.NoError(err)
	require.Empty(polls)

	votes, err := f.svc.GetVotes(42)
	require.NoError(err)
	require.Empty(votes)
	_, err = f.svc.GetPoll(42)
	require.Equal(ErrPollNotFound, errors.Cause(err))
}

func TestRecomputeTally(t *testing.T) {
	require := require.New(t)
	f := newFixture(t, db.NewMemKVStore(), db.NewMemKVStore())

	_, err := f.svc.CreatePoll(as(_alice), CreatePollArgs{Title: "t", Options: []string{"a", "b"}})
	require.NoError(err)
	_, err = f.svc.Vote(as(_bob), 1, 1)
	require.NoError(err)
	_, err = f.svc.Vote(as(_carol), 1, 1)
	require.NoError(err)

	p, err := f.svc.RecomputeTally(context.Background(), 1)
	require.NoError(err)
	require.Equal([]uint64{0, 2}, p.Tally)

	p.Tally = []uint64{7, 0}
	data, err := p.Serialize()
	require.NoError(err)
	require.NoError(f.svc.kv.Put(PollsNamespace, pollKey(1), data))
	p, err = f.svc.RecomputeTally(context.Background(), 1)
	require.NoError(err)
	require.Equal([]uint64{0, 2}, p.Tally)
	p, err = f.svc.GetPoll(1)
	require.NoError(err)
	require.Equal([]uint64{0, 2}, p.Tally)

	_, err = f.svc.RecomputeTally(context.Background(), 2)
	require.Equal(ErrPollNotFound, errors.Cause(err))
}

func TestRestart(t *testing.T) {
	require := require.New(t)
	pollPath, err := testutil.PathOfTempFile("poll")
	require.NoError(err)
	ledgerPath, err := testutil.PathOfTempFile("ledger")
	require.NoError(err)
	defer testutil.CleanupPath(t, pollPath)
	defer testutil.CleanupPath(t, ledgerPath)

	cfg := db.DefaultConfig
	cfg.DbPath = pollPath
	pollKV := db.NewBoltDB(cfg)
	cfg.DbPath = ledgerPath
	ledgerKV := db.NewBoltDB(cfg)

	ctx := context.Background()
	clk := testutil.NewMockClock()
	l := ledger.New(ledgerKV, ledger.WithMinters(_service), ledger.WithClock(clk))
	require.NoError(l.Start(ctx))
	svc := NewService(pollKV, ledger.NewLocalMinter(l, _service), WithClock(clk))
	require.NoError(svc.Start(ctx))
	_, err = svc.CreatePoll(as(_alice), CreatePollArgs{Title: "t", Options: []string{"a", "b"}})
	require.NoError(err)
	_, err = svc.Vote(as(_bob), 1, 1)
	require.NoError(err)
	require.NoError(svc.Stop(ctx))
	require.NoError(l.Stop(ctx))

	cfg.DbPath = pollPath
	pollKV = db.NewBoltDB(cfg)
	cfg.DbPath = ledgerPath
	ledgerKV = db.NewBoltDB(cfg)
	l = ledger.New(ledgerKV, ledger.WithMinters(_service), ledger.WithClock(clk))
	require.NoError(l.Start(ctx))
	defer l.Stop(ctx)
	svc = NewService(pollKV, ledger.NewLocalMinter(l, _service), WithClock(clk))
	require.NoError(svc.Start(ctx))
	defer svc.Stop(ctx)

	p, err := svc.GetPoll(1)
	require.NoError(err)
	require.Equal([]uint64{0, 1}, p.Tally)
	votes, err := svc.GetVotes(1)
	require.NoError(err)
	require.Len(votes, 1)
	require.Equal(_bob, votes[0].Voter)
	_, err = svc.Vote(as(_bob), 1, 0)
	require.Equal(ErrAlreadyVoted, errors.Cause(err))
	balance, err := l.BalanceOf(_alice)
	require.NoError(err)
	require.Equal(CreateReward, balance)

	// the id counter survives the restart
	r, err := svc.CreatePoll(as(_alice), CreatePollArgs{Title: "t", Options: []string{"a", "b"}})
	require.NoError(err)
	require.Equal(uint64(2), r.PollID)
}
