// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/iotexproject/pollrush/poll"
	"github.com/iotexproject/pollrush/protocol"
	"github.com/iotexproject/pollrush/state"
)

// ReceiptResult is the result of create_poll and vote
type ReceiptResult struct {
	PollID uint64 `json:"pollId"`
	Reward uint64 `json:"reward"`
	// RewardError is set when the reward was queued instead of minted
	RewardError *errorBody `json:"rewardError,omitempty"`
}

func (s *Server) pollMethods() map[string]methodHandler {
	return map[string]methodHandler{
		"create_poll":       s.createPoll,
		"vote":              s.vote,
		"get_poll":          s.getPoll,
		"get_polls":         s.getPolls,
		"get_my_polls":      s.getMyPolls,
		"get_my_attendance": s.getMyAttendance,
		"get_votes":         s.getVotes,
		"pending_rewards":   s.pendingRewards,
	}
}

func (s *Server) createPoll(ctx context.Context, params gjson.Result) (any, error) {
	title, err := stringParam(params, "title")
	if err != nil {
		return nil, err
	}
	description, err := stringParam(params, "description")
	if err != nil {
		return nil, err
	}
	options, err := stringsParam(params, "options")
	if err != nil {
		return nil, err
	}
	deadline, err := optionalUint64Param(params, "deadline")
	if err != nil {
		return nil, err
	}
	r, err := s.poll.CreatePoll(ctx, poll.CreatePollArgs{
		Title:       title,
		Description: description,
		Options:     options,
		Deadline:    deadline,
	})
	if err != nil {
		return nil, err
	}
	return receiptResult(r), nil
}

func (s *Server) vote(ctx context.Context, params gjson.Result) (any, error) {
	pollID, err := uint64Param(params, "pollId")
	if err != nil {
		return nil, err
	}
	option, err := uint32Param(params, "optionIndex")
	if err != nil {
		return nil, err
	}
	r, err := s.poll.Vote(ctx, pollID, option)
	if err != nil {
		return nil, err
	}
	return receiptResult(r), nil
}

func (s *Server) getPoll(_ context.Context, params gjson.Result) (any, error) {
	pollID, err := uint64Param(params, "pollId")
	if err != nil {
		return nil, err
	}
	return s.poll.GetPoll(pollID)
}

func (s *Server) getPolls(_ context.Context, params gjson.Result) (any, error) {
	sortBy, err := stringParam(params, "sortBy")
	if err != nil {
		return nil, err
	}
	return nonNil(s.poll.GetPolls(sortBy))
}

func (s *Server) getMyPolls(ctx context.Context, params gjson.Result) (any, error) {
	p, err := principalOrCaller(params, "principal", protocol.MustGetCallerCtx(ctx).Caller)
	if err != nil {
		return nil, err
	}
	return nonNil(s.poll.GetMyPolls(p))
}

func (s *Server) getMyAttendance(ctx context.Context, params gjson.Result) (any, error) {
	p, err := principalOrCaller(params, "principal", protocol.MustGetCallerCtx(ctx).Caller)
	if err != nil {
		return nil, err
	}
	return nonNil(s.poll.GetMyAttendance(p))
}

func (s *Server) getVotes(_ context.Context, params gjson.Result) (any, error) {
	pollID, err := uint64Param(params, "pollId")
	if err != nil {
		return nil, err
	}
	votes, err := s.poll.GetVotes(pollID)
	if err != nil {
		return nil, err
	}
	if votes == nil {
		votes = []*state.Vote{}
	}
	return votes, nil
}

func (s *Server) pendingRewards(_ context.Context, _ gjson.Result) (any, error) {
	rewards, err := s.poll.PendingRewards()
	if err != nil {
		return nil, err
	}
	if rewards == nil {
		rewards = []*state.PendingReward{}
	}
	return rewards, nil
}

func receiptResult(r *poll.Receipt) *ReceiptResult {
	res := &ReceiptResult{PollID: r.PollID, Reward: r.Reward}
	if r.RewardErr != nil {
		res.RewardError = &errorBody{Kind: ErrorKind(r.RewardErr), Message: r.RewardErr.Error()}
	}
	return res
}

func nonNil(polls []*state.Poll, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if polls == nil {
		polls = []*state.Poll{}
	}
	return polls, nil
}
