// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import "github.com/iotexproject/pollrush/principal"

// PendingReward is a reward mint that failed and waits to be retried
type PendingReward struct {
	Seq           uint64              `json:"seq" msgpack:"seq"`
	To            principal.Principal `json:"to" msgpack:"to"`
	Amount        uint64              `json:"amount" msgpack:"amount"`
	Memo          string              `json:"memo" msgpack:"memo"`
	Reason        string              `json:"reason" msgpack:"reason"`
	PollID        uint64              `json:"pollId" msgpack:"pollId"`
	CreatedAt     uint64              `json:"createdAt" msgpack:"createdAt"`
	Attempts      uint32              `json:"attempts" msgpack:"attempts"`
	NextAttemptAt uint64              `json:"nextAttemptAt" msgpack:"nextAttemptAt"`
	LastError     string              `json:"lastError,omitempty" msgpack:"lastError"`
}

// Serialize serializes pending reward into bytes
func (r *PendingReward) Serialize() ([]byte, error) {
	return encode(r, MaxPendingRewardSize)
}

// Deserialize deserializes bytes into pending reward
func (r *PendingReward) Deserialize(buf []byte) error {
	return decode(buf, r)
}
