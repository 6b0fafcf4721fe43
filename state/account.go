// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package state

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/iotexproject/pollrush/principal"
)

// MaxAllowances is the number of spenders an account may approve at once
const MaxAllowances = 20

type (
	// Allowance is the amount a spender may move out of the owner's account
	Allowance struct {
		_msgpack struct{} `msgpack:",as_array"`

		Spender principal.Principal `json:"spender" msgpack:"spender"`
		Amount  uint64              `json:"amount" msgpack:"amount"`
	}

	// Account is the ledger record of one principal
	Account struct {
		Balance uint64 `json:"balance" msgpack:"balance"`
		// Allowances is kept sorted by spender, zero amounts are never stored
		Allowances  []Allowance `json:"allowances" msgpack:"allowances"`
		LastUpdated uint64      `json:"lastUpdated" msgpack:"lastUpdated"`
	}

	// TokenInfo describes the token and its supply
	TokenInfo struct {
		Name        string `json:"name" msgpack:"name"`
		Symbol      string `json:"symbol" msgpack:"symbol"`
		Decimals    uint8  `json:"decimals" msgpack:"decimals"`
		TotalSupply uint64 `json:"totalSupply" msgpack:"totalSupply"`
	}
)

// Serialize serializes account state into bytes
func (st *Account) Serialize() ([]byte, error) {
	return encode(st, MaxAccountSize)
}

// Deserialize deserializes bytes into account state
func (st *Account) Deserialize(buf []byte) error {
	return decode(buf, st)
}

// AddBalance adds balance for account state
func (st *Account) AddBalance(amount uint64) error {
	b, err := SafeAdd(st.Balance, amount)
	if err != nil {
		return err
	}
	st.Balance = b
	return nil
}

// SubBalance subtracts balance for account state
func (st *Account) SubBalance(amount uint64) error {
	if amount > st.Balance {
		return errors.Wrapf(ErrNotEnoughBalance, "balance %d, amount %d", st.Balance, amount)
	}
	st.Balance -= amount
	return nil
}

// Allowance returns the allowance granted to spender
func (st *Account) Allowance(spender principal.Principal) (uint64, bool) {
	i := st.allowanceIndex(spender)
	if i < len(st.Allowances) && st.Allowances[i].Spender == spender {
		return st.Allowances[i].Amount, true
	}
	return 0, false
}

// SetAllowance sets the allowance of spender, zero revokes it
func (st *Account) SetAllowance(spender principal.Principal, amount uint64) {
	i := st.allowanceIndex(spender)
	found := i < len(st.Allowances) && st.Allowances[i].Spender == spender
	switch {
	case found && amount == 0:
		st.Allowances = append(st.Allowances[:i], st.Allowances[i+1:]...)
	case found:
		st.Allowances[i].Amount = amount
	case amount > 0:
		st.Allowances = append(st.Allowances, Allowance{})
		copy(st.Allowances[i+1:], st.Allowances[i:])
		st.Allowances[i] = Allowance{Spender: spender, Amount: amount}
	}
	if len(st.Allowances) == 0 {
		st.Allowances = nil
	}
}

func (st *Account) allowanceIndex(spender principal.Principal) int {
	return sort.Search(len(st.Allowances), func(i int) bool {
		return st.Allowances[i].Spender.Compare(spender) >= 0
	})
}

// Serialize serializes token info into bytes
func (ti *TokenInfo) Serialize() ([]byte, error) {
	return encode(ti, MaxAccountSize)
}

// Deserialize deserializes bytes into token info
func (ti *TokenInfo) Deserialize(buf []byte) error {
	return decode(buf, ti)
}
