// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import "github.com/pkg/errors"

var (
	// ErrInsufficientBalance is returned when the debited account holds less than the amount
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrNoAllowance is returned when the owner never approved the spender
	ErrNoAllowance = errors.New("no allowance")
	// ErrInsufficientAllowance is returned when the approved amount is less than the amount
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	// ErrOverflow is returned when a credit or the total supply would exceed the u64 range
	ErrOverflow = errors.New("overflow")
	// ErrUnauthorized is returned when a caller outside the minter set mints
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTooManyAllowances is returned when approving a new spender on an account holding
	// state.MaxAllowances allowances
	ErrTooManyAllowances = errors.New("too many allowances")
	// ErrAccountNotFound is returned when querying an account that was never credited or approved
	ErrAccountNotFound = errors.New("account not found")
	// ErrSupplyMismatch is returned by Audit when the total supply differs from the sum of balances
	ErrSupplyMismatch = errors.New("total supply mismatch")
)
