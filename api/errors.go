// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"github.com/pkg/errors"

	"github.com/iotexproject/pollrush/ledger"
	"github.com/iotexproject/pollrush/poll"
)

// Error kinds reported in the error envelope
const (
	KindPollNotFound          = "PollNotFound"
	KindPollInactive          = "PollInactive"
	KindDeadlinePassed        = "DeadlinePassed"
	KindInvalidOption         = "InvalidOption"
	KindAlreadyVoted          = "AlreadyVoted"
	KindValidationError       = "ValidationError"
	KindInsufficientBalance   = "InsufficientBalance"
	KindNoAllowance           = "NoAllowance"
	KindInsufficientAllowance = "InsufficientAllowance"
	KindOverflow              = "Overflow"
	KindUnauthorized          = "Unauthorized"
	KindTooManyAllowances     = "TooManyAllowances"
	KindRewardMintFailed      = "RewardMintFailed"
	KindInvalidRequest        = "InvalidRequest"
	KindMethodNotFound        = "MethodNotFound"
	KindRateLimited           = "RateLimited"
	KindInternal              = "Internal"
)

var (
	// ErrInvalidRequest is returned for a malformed envelope or parameter
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMethodNotFound is returned for an unknown method
	ErrMethodNotFound = errors.New("method not found")
	// ErrRateLimited is returned when a caller exceeds its request rate
	ErrRateLimited = errors.New("rate limited")
	// ErrInternal stands for an Internal error reported by a remote node
	ErrInternal = errors.New("internal error")

	_kinds = []struct {
		err  error
		kind string
	}{
		{poll.ErrPollNotFound, KindPollNotFound},
		{poll.ErrPollInactive, KindPollInactive},
		{poll.ErrDeadlinePassed, KindDeadlinePassed},
		{poll.ErrInvalidOption, KindInvalidOption},
		{poll.ErrAlreadyVoted, KindAlreadyVoted},
		{poll.ErrValidation, KindValidationError},
		{ledger.ErrInsufficientBalance, KindInsufficientBalance},
		{ledger.ErrNoAllowance, KindNoAllowance},
		{ledger.ErrInsufficientAllowance, KindInsufficientAllowance},
		{ledger.ErrOverflow, KindOverflow},
		{ledger.ErrUnauthorized, KindUnauthorized},
		{ledger.ErrTooManyAllowances, KindTooManyAllowances},
		{poll.ErrRewardMintFailed, KindRewardMintFailed},
		{ErrInvalidRequest, KindInvalidRequest},
		{ErrMethodNotFound, KindMethodNotFound},
		{ErrRateLimited, KindRateLimited},
	}
)

// ErrorKind maps an error to the kind reported to the caller
func ErrorKind(err error) string {
	cause := errors.Cause(err)
	for _, k := range _kinds {
		if cause == k.err {
			return k.kind
		}
	}
	return KindInternal
}

// KindError maps a kind back to its sentinel error, unknown kinds map to ErrInternal
func KindError(kind string) error {
	for _, k := range _kinds {
		if kind == k.kind {
			return k.err
		}
	}
	return ErrInternal
}
