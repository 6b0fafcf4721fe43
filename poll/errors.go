// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package poll

import "github.com/pkg/errors"

var (
	// ErrPollNotFound is returned when no poll has the id
	ErrPollNotFound = errors.New("poll not found")
	// ErrPollInactive is returned when voting on a poll whose is_active flag is off
	ErrPollInactive = errors.New("poll is inactive")
	// ErrDeadlinePassed is returned when voting after the deadline
	ErrDeadlinePassed = errors.New("deadline passed")
	// ErrInvalidOption is returned for an out of range option index or option count
	ErrInvalidOption = errors.New("invalid option")
	// ErrAlreadyVoted is returned when the caller voted in the poll before
	ErrAlreadyVoted = errors.New("already voted")
	// ErrValidation is returned for a malformed title, description, option or deadline
	ErrValidation = errors.New("validation error")
	// ErrRewardMintFailed reports a reward that was not minted, the poll or vote itself is recorded
	ErrRewardMintFailed = errors.New("reward mint failed")
)
