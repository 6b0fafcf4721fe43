// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"github.com/iotexproject/pollrush/principal"
)

type (
	// Poll is a question with a fixed list of options and a tally per option
	Poll struct {
		ID          uint64              `json:"id" msgpack:"id"`
		Title       string              `json:"title" msgpack:"title"`
		Description string              `json:"description" msgpack:"description"`
		Options     []string            `json:"options" msgpack:"options"`
		Creator     principal.Principal `json:"creator" msgpack:"creator"`
		CreatedAt   uint64              `json:"createdAt" msgpack:"createdAt"`
		// Deadline is nil for polls open forever
		Deadline *uint64  `json:"deadline,omitempty" msgpack:"deadline"`
		IsActive bool     `json:"isActive" msgpack:"isActive"`
		Tally    []uint64 `json:"tally" msgpack:"tally"`
	}

	// Vote is one principal's choice in one poll
	Vote struct {
		PollID      uint64              `json:"pollId" msgpack:"pollId"`
		Voter       principal.Principal `json:"voter" msgpack:"voter"`
		OptionIndex uint32              `json:"optionIndex" msgpack:"optionIndex"`
		VotedAt     uint64              `json:"votedAt" msgpack:"votedAt"`
	}
)

// Serialize serializes poll into bytes
func (p *Poll) Serialize() ([]byte, error) {
	return encode(p, MaxPollSize)
}

// Deserialize deserializes bytes into poll
func (p *Poll) Deserialize(buf []byte) error {
	return decode(buf, p)
}

// TotalVotes returns the sum of the tally
func (p *Poll) TotalVotes() uint64 {
	var total uint64
	for _, n := range p.Tally {
		total += n
	}
	return total
}

// Closed tells whether votes are refused at time now
func (p *Poll) Closed(now uint64) bool {
	return p.Deadline != nil && now > *p.Deadline
}

// Serialize serializes vote into bytes
func (v *Vote) Serialize() ([]byte, error) {
	return encode(v, MaxVoteSize)
}

// Deserialize deserializes bytes into vote
func (v *Vote) Deserialize(buf []byte) error {
	return decode(buf, v)
}
