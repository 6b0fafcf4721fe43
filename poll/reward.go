// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package poll

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/db/batch"
	"github.com/iotexproject/pollrush/ledger"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/util/byteutil"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/state"
)

const (
	// CreateReward is minted to the creator of a poll
	CreateReward = 100 * ledger.Unit
	// VoteReward is minted to a voter
	VoteReward = 10 * ledger.Unit

	_reasonCreate = "create"
	_reasonVote   = "vote"

	_maxLastErrorLength = 256
)

//go:generate mockgen -destination=../test/mock/mock_minter/mock_minter.go -package=mock_minter . Minter

type (
	// Minter credits reward units to a principal. The memo identifies the reward, minting the
	// same memo twice credits once.
	Minter interface {
		Mint(ctx context.Context, to principal.Principal, amount uint64, memo string) error
	}

	// Receipt is the outcome of CreatePoll and Vote
	Receipt struct {
		PollID uint64
		// Reward is the amount minted, or queued when RewardErr is set
		Reward uint64
		// RewardErr wraps ErrRewardMintFailed when the mint failed, the poll or vote is recorded
		// regardless and the reward waits in the pending queue
		RewardErr error
	}
)

// RewardMemo names the reward of a poll creation or a vote
func RewardMemo(pollID uint64, reason string, to principal.Principal) string {
	if reason == _reasonVote {
		return fmt.Sprintf("poll/%d/vote/%s", pollID, to)
	}
	return fmt.Sprintf("poll/%d/create", pollID)
}

// reward mints amount to `to` and queues the reward on failure
func (s *Service) reward(ctx context.Context, r *Receipt, to principal.Principal, amount uint64, reason string) {
	r.Reward = amount
	if amount == 0 {
		return
	}
	memo := RewardMemo(r.PollID, reason, to)
	err := s.mint(ctx, to, amount, memo)
	if err == nil {
		return
	}
	r.RewardErr = errors.Wrapf(ErrRewardMintFailed, "%s: %v", memo, err)
	log.L().Warn("Reward mint failed, queued for retry.",
		zap.Uint64("pollID", r.PollID),
		zap.String("memo", memo),
		zap.Error(err))
	if err := s.queueReward(to, amount, memo, reason, r.PollID, err); err != nil {
		log.L().Error("Failed to queue reward.", zap.String("memo", memo), zap.Error(err))
	}
}

func (s *Service) mint(ctx context.Context, to principal.Principal, amount uint64, memo string) error {
	if s.mintTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.mintTimeout)
		defer cancel()
	}
	return s.minter.Mint(ctx, to, amount, memo)
}

func (s *Service) queueReward(to principal.Principal, amount uint64, memo, reason string, pollID uint64, cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	seq := s.nextRewardSeq
	pr := &state.PendingReward{
		Seq:           seq,
		To:            to,
		Amount:        amount,
		Memo:          memo,
		Reason:        reason,
		PollID:        pollID,
		CreatedAt:     now,
		Attempts:      1,
		NextAttemptAt: now,
		LastError:     truncate(cause.Error()),
	}
	data, err := pr.Serialize()
	if err != nil {
		return err
	}
	b := batch.NewBatch()
	b.Put(PendingRewardsNamespace, byteutil.Uint64ToBytesBigEndian(seq), data, "failed to put pending reward %d", seq)
	b.Put(MetaNamespace, _nextRewardSeqKey, byteutil.Uint64ToBytesBigEndian(seq+1), "failed to put next reward seq")
	if err := s.kv.WriteBatch(b); err != nil {
		return err
	}
	s.nextRewardSeq = seq + 1
	s.setPending(s.pending + 1)
	return nil
}

// retryPendingRewards mints every pending reward due at now. A minted reward leaves the queue, a
// failed one is rescheduled at now + next(attempts).
func (s *Service) retryPendingRewards(ctx context.Context, next func(attempts uint32) uint64) (minted int, err error) {
	due, err := s.dueRewards()
	if err != nil {
		return 0, err
	}
	for _, pr := range due {
		if ctx.Err() != nil {
			return minted, ctx.Err()
		}
		mintErr := s.mint(ctx, pr.To, pr.Amount, pr.Memo)
		if err := s.settleReward(pr, mintErr, next); err != nil {
			return minted, err
		}
		if mintErr == nil {
			minted++
			log.L().Info("Pending reward minted.", zap.String("memo", pr.Memo), zap.Uint32("attempts", pr.Attempts+1))
		} else {
			log.L().Warn("Pending reward mint failed.", zap.String("memo", pr.Memo), zap.Uint32("attempts", pr.Attempts), zap.Error(mintErr))
		}
	}
	return minted, nil
}

func (s *Service) dueRewards() ([]*state.PendingReward, error) {
	s.mu.Lock()
	now := s.now()
	s.mu.Unlock()
	all, err := s.pendingRewards()
	if err != nil {
		return nil, err
	}
	due := all[:0]
	for _, pr := range all {
		if pr.NextAttemptAt <= now {
			due = append(due, pr)
		}
	}
	return due, nil
}

func (s *Service) settleReward(pr *state.PendingReward, mintErr error, next func(uint32) uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := byteutil.Uint64ToBytesBigEndian(pr.Seq)
	b := batch.NewBatch()
	if mintErr == nil {
		b.Delete(PendingRewardsNamespace, key, "failed to delete pending reward %d", pr.Seq)
		if err := s.kv.WriteBatch(b); err != nil {
			return err
		}
		s.setPending(s.pending - 1)
		return nil
	}
	pr.Attempts++
	pr.NextAttemptAt = s.now() + next(pr.Attempts)
	pr.LastError = truncate(mintErr.Error())
	data, err := pr.Serialize()
	if err != nil {
		return err
	}
	b.Put(PendingRewardsNamespace, key, data, "failed to put pending reward %d", pr.Seq)
	return s.kv.WriteBatch(b)
}

func truncate(msg string) string {
	if len(msg) > _maxLastErrorLength {
		return msg[:_maxLastErrorLength]
	}
	return msg
}
