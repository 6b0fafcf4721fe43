// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package poll

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/db/batch"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/util/byteutil"
	"github.com/iotexproject/pollrush/protocol"
	"github.com/iotexproject/pollrush/state"
)

// CreatePoll records a new poll created by the caller and rewards the caller. The poll is
// committed before the reward is minted, a failed mint is reported in the receipt and queued.
func (s *Service) CreatePoll(ctx context.Context, args CreatePollArgs) (r *Receipt, err error) {
	defer func() { observe("createPoll", err) }()
	cc := protocol.MustGetCallerCtx(ctx)
	now := s.now()
	if err := validatePoll(&args, now); err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextPollID
	p := &state.Poll{
		ID:          id,
		Title:       args.Title,
		Description: args.Description,
		Options:     append([]string(nil), args.Options...),
		Creator:     cc.Caller,
		CreatedAt:   now,
		Deadline:    args.Deadline,
		IsActive:    true,
		Tally:       make([]uint64, len(args.Options)),
	}
	data, err := p.Serialize()
	if err != nil {
		s.mu.Unlock()
		return nil, errors.Wrap(ErrValidation, err.Error())
	}
	b := batch.NewBatch()
	b.Put(PollsNamespace, pollKey(id), data, "failed to put poll %d", id)
	b.Put(MetaNamespace, _nextPollIDKey, byteutil.Uint64ToBytesBigEndian(id+1), "failed to put next poll id")
	if err := s.kv.WriteBatch(b); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.nextPollID = id + 1
	s.mu.Unlock()

	log.L().Info("Poll created.",
		zap.Uint64("pollID", id),
		zap.Stringer("creator", cc.Caller),
		zap.String("requestID", cc.RequestID))
	r = &Receipt{PollID: id}
	s.reward(ctx, r, cc.Caller, s.createReward, _reasonCreate)
	return r, nil
}

// Vote records the caller's vote for option optionIndex of poll pollID and rewards the caller.
// The vote is committed before the reward is minted.
func (s *Service) Vote(ctx context.Context, pollID uint64, optionIndex uint32) (r *Receipt, err error) {
	defer func() { observe("vote", err) }()
	cc := protocol.MustGetCallerCtx(ctx)

	s.mu.Lock()
	now := s.now()
	p, err := s.loadPoll(pollID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := checkVote(p, optionIndex, now); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	key := voteKey(pollID, cc.Caller)
	_, err = s.kv.Get(VotesNamespace, key)
	switch errors.Cause(err) {
	case nil:
		s.mu.Unlock()
		return nil, errors.Wrapf(ErrAlreadyVoted, "%s in poll %d", cc.Caller, pollID)
	case db.ErrNotExist:
	default:
		s.mu.Unlock()
		return nil, err
	}

	v := &state.Vote{
		PollID:      pollID,
		Voter:       cc.Caller,
		OptionIndex: optionIndex,
		VotedAt:     now,
	}
	p.Tally[optionIndex]++
	if err := s.writeVote(p, v); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	log.L().Info("Vote cast.",
		zap.Uint64("pollID", pollID),
		zap.Uint32("option", optionIndex),
		zap.Stringer("voter", cc.Caller),
		zap.String("requestID", cc.RequestID))
	r = &Receipt{PollID: pollID}
	s.reward(ctx, r, cc.Caller, s.voteReward, _reasonVote)
	return r, nil
}

func (s *Service) writeVote(p *state.Poll, v *state.Vote) error {
	pollData, err := p.Serialize()
	if err != nil {
		return err
	}
	voteData, err := v.Serialize()
	if err != nil {
		return err
	}
	b := batch.NewBatch()
	b.Put(VotesNamespace, voteKey(v.PollID, v.Voter), voteData, "failed to put vote of %s", v.Voter)
	b.Put(VoterIndexNamespace, voterIndexKey(v.Voter, v.PollID), []byte{}, "failed to index vote of %s", v.Voter)
	b.Put(PollsNamespace, pollKey(p.ID), pollData, "failed to put poll %d", p.ID)
	return s.kv.WriteBatch(b)
}

// RecomputeTally rebuilds the tally of a poll from its votes and stores it if it drifted
func (s *Service) RecomputeTally(_ context.Context, pollID uint64) (*state.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.loadPoll(pollID)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes(pollID)
	if err != nil {
		return nil, err
	}
	tally := make([]uint64, len(p.Options))
	for _, v := range votes {
		if int(v.OptionIndex) >= len(tally) {
			return nil, errors.Wrapf(ErrInvalidOption, "vote of %s in poll %d picks option %d", v.Voter, pollID, v.OptionIndex)
		}
		tally[v.OptionIndex]++
	}
	changed := len(p.Tally) != len(tally)
	for i := 0; !changed && i < len(tally); i++ {
		changed = tally[i] != p.Tally[i]
	}
	if !changed {
		return p, nil
	}
	log.L().Warn("Tally repaired.",
		zap.Uint64("pollID", pollID),
		zap.Uint64s("stored", p.Tally),
		zap.Uint64s("recomputed", tally))
	p.Tally = tally
	data, err := p.Serialize()
	if err != nil {
		return nil, err
	}
	b := batch.NewBatch()
	b.Put(PollsNamespace, pollKey(pollID), data, "failed to put poll %d", pollID)
	if err := s.kv.WriteBatch(b); err != nil {
		return nil, err
	}
	return p, nil
}

func validatePoll(args *CreatePollArgs, now uint64) error {
	if len(args.Title) == 0 || len(args.Title) > MaxTitleLength {
		return errors.Wrapf(ErrValidation, "title must have 1 to %d bytes", MaxTitleLength)
	}
	if len(args.Description) > MaxDescriptionLength {
		return errors.Wrapf(ErrValidation, "description exceeds %d bytes", MaxDescriptionLength)
	}
	if len(args.Options) < MinOptions || len(args.Options) > MaxOptions {
		return errors.Wrapf(ErrInvalidOption, "a poll has %d to %d options, got %d", MinOptions, MaxOptions, len(args.Options))
	}
	for i, o := range args.Options {
		if len(o) == 0 || len(o) > MaxOptionLength {
			return errors.Wrapf(ErrValidation, "option %d must have 1 to %d bytes", i, MaxOptionLength)
		}
	}
	if args.Deadline != nil && *args.Deadline <= now {
		return errors.Wrapf(ErrValidation, "deadline %d is not after now %d", *args.Deadline, now)
	}
	return nil
}

func checkVote(p *state.Poll, optionIndex uint32, now uint64) error {
	if !p.IsActive {
		return errors.Wrapf(ErrPollInactive, "poll %d", p.ID)
	}
	if p.Closed(now) {
		return errors.Wrapf(ErrDeadlinePassed, "poll %d closed at %d", p.ID, *p.Deadline)
	}
	if int(optionIndex) >= len(p.Options) {
		return errors.Wrapf(ErrInvalidOption, "poll %d has %d options, got %d", p.ID, len(p.Options), optionIndex)
	}
	return nil
}
