// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/iotexproject/pollrush/ledger"
)

// AmountResult is the result of balance_of and allowance
type AmountResult struct {
	Amount uint64 `json:"amount"`
}

// AckResult acknowledges a ledger update
type AckResult struct {
	OK bool `json:"ok"`
}

func (s *Server) ledgerMethods() map[string]methodHandler {
	return map[string]methodHandler{
		"balance_of":     s.balanceOf,
		"allowance":      s.allowance,
		"get_token_info": s.tokenInfo,
		"mint":           s.mint,
		"transfer":       s.transfer,
		"approve":        s.approve,
		"transfer_from":  s.transferFrom,
	}
}

func (s *Server) balanceOf(_ context.Context, params gjson.Result) (any, error) {
	owner, err := principalParam(params, "owner")
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.BalanceOf(owner)
	if err != nil {
		return nil, err
	}
	return &AmountResult{Amount: balance}, nil
}

func (s *Server) allowance(_ context.Context, params gjson.Result) (any, error) {
	owner, err := principalParam(params, "owner")
	if err != nil {
		return nil, err
	}
	spender, err := principalParam(params, "spender")
	if err != nil {
		return nil, err
	}
	amount, err := s.ledger.Allowance(owner, spender)
	if err != nil {
		return nil, err
	}
	return &AmountResult{Amount: amount}, nil
}

func (s *Server) tokenInfo(_ context.Context, _ gjson.Result) (any, error) {
	return s.ledger.TokenInfo()
}

func (s *Server) mint(ctx context.Context, params gjson.Result) (any, error) {
	to, err := principalParam(params, "to")
	if err != nil {
		return nil, err
	}
	amount, err := uint64Param(params, "amount")
	if err != nil {
		return nil, err
	}
	memo, err := stringParam(params, "memo")
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Mint(ctx, to, amount, ledger.WithMemo(memo)); err != nil {
		return nil, err
	}
	return &AckResult{OK: true}, nil
}

func (s *Server) transfer(ctx context.Context, params gjson.Result) (any, error) {
	to, err := principalParam(params, "to")
	if err != nil {
		return nil, err
	}
	amount, err := uint64Param(params, "amount")
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Transfer(ctx, to, amount); err != nil {
		return nil, err
	}
	return &AckResult{OK: true}, nil
}

func (s *Server) approve(ctx context.Context, params gjson.Result) (any, error) {
	spender, err := principalParam(params, "spender")
	if err != nil {
		return nil, err
	}
	amount, err := uint64Param(params, "amount")
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Approve(ctx, spender, amount); err != nil {
		return nil, err
	}
	return &AckResult{OK: true}, nil
}

func (s *Server) transferFrom(ctx context.Context, params gjson.Result) (any, error) {
	from, err := principalParam(params, "from")
	if err != nil {
		return nil, err
	}
	to, err := principalParam(params, "to")
	if err != nil {
		return nil, err
	}
	amount, err := uint64Param(params, "amount")
	if err != nil {
		return nil, err
	}
	if err := s.ledger.TransferFrom(ctx, from, to, amount); err != nil {
		return nil, err
	}
	return &AckResult{OK: true}, nil
}
