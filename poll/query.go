// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package poll

import (
	"sort"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/pkg/util/byteutil"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/state"
)

const (
	// SortByTime orders polls by descending creation time
	SortByTime = "time"
	// SortByPopularity orders polls by descending number of votes
	SortByPopularity = "popularity"
)

// GetPoll returns the poll with the id
func (s *Service) GetPoll(id uint64) (*state.Poll, error) {
	return s.loadPoll(id)
}

// GetPolls returns every poll, in id order unless sortBy is SortByTime or SortByPopularity.
// Ties keep id order.
func (s *Service) GetPolls(sortBy string) ([]*state.Poll, error) {
	polls, err := s.polls(nil)
	if err != nil {
		return nil, err
	}
	switch sortBy {
	case SortByTime:
		sort.SliceStable(polls, func(i, j int) bool {
			return polls[i].CreatedAt > polls[j].CreatedAt
		})
	case SortByPopularity:
		sort.SliceStable(polls, func(i, j int) bool {
			return polls[i].TotalVotes() > polls[j].TotalVotes()
		})
	}
	return polls, nil
}

// GetMyPolls returns the polls created by p, in id order
func (s *Service) GetMyPolls(p principal.Principal) ([]*state.Poll, error) {
	return s.polls(func(poll *state.Poll) bool {
		return poll.Creator == p
	})
}

// GetMyAttendance returns the polls p voted in, in id order
func (s *Service) GetMyAttendance(p principal.Principal) ([]*state.Poll, error) {
	keys, _, err := db.ScanPrefix(s.kv, VoterIndexNamespace, p[:])
	if err != nil {
		return nil, err
	}
	polls := make([]*state.Poll, 0, len(keys))
	for _, k := range keys {
		poll, err := s.loadPoll(byteutil.BytesToUint64BigEndian(k[principal.Length:]))
		if err != nil {
			return nil, err
		}
		polls = append(polls, poll)
	}
	return polls, nil
}

// GetVotes returns the votes of a poll, ordered by voter
func (s *Service) GetVotes(pollID uint64) ([]*state.Vote, error) {
	return s.votes(pollID)
}

// PendingRewards returns the rewards waiting for a retry, oldest first
func (s *Service) PendingRewards() ([]*state.PendingReward, error) {
	return s.pendingRewards()
}

func (s *Service) polls(filter func(*state.Poll) bool) ([]*state.Poll, error) {
	var polls []*state.Poll
	if err := s.kv.ForEach(PollsNamespace, func(_, v []byte) error {
		var p state.Poll
		if err := p.Deserialize(v); err != nil {
			return err
		}
		if filter == nil || filter(&p) {
			polls = append(polls, &p)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return polls, nil
}

func (s *Service) votes(pollID uint64) ([]*state.Vote, error) {
	_, vals, err := db.ScanPrefix(s.kv, VotesNamespace, pollKey(pollID))
	if err != nil {
		return nil, err
	}
	votes := make([]*state.Vote, 0, len(vals))
	for _, v := range vals {
		var vote state.Vote
		if err := vote.Deserialize(v); err != nil {
			return nil, err
		}
		votes = append(votes, &vote)
	}
	return votes, nil
}

func (s *Service) pendingRewards() ([]*state.PendingReward, error) {
	var rewards []*state.PendingReward
	if err := s.kv.ForEach(PendingRewardsNamespace, func(_, v []byte) error {
		var r state.PendingReward
		if err := r.Deserialize(v); err != nil {
			return err
		}
		rewards = append(rewards, &r)
		return nil
	}); err != nil {
		return nil, err
	}
	return rewards, nil
}
