// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package ledger implements the PPs reward token: balances, allowances, transfers and minting.
package ledger

import (
	"context"
	"sync"

	"github.com/facebookgo/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/state"
)

const (
	// AccountsNamespace stores an Account per principal
	AccountsNamespace = "Accounts"
	// TokenInfoNamespace stores the TokenInfo singleton
	TokenInfoNamespace = "TokenInfo"
	// MintMemosNamespace records the memo of every applied mint, keyed by minter then memo
	MintMemosNamespace = "MintMemos"

	// Decimals is the number of decimals of PPs
	Decimals = 8
	// Unit is one PPs in base units
	Unit uint64 = 100_000_000
)

var (
	_tokenInfoKey = []byte("tokenInfo")

	// DefaultTokenInfo is written on first start
	DefaultTokenInfo = state.TokenInfo{
		Name:        "Predi Poll Shares",
		Symbol:      "PPs",
		Decimals:    Decimals,
		TotalSupply: 0,
	}

	_ledgerMtc = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollrush_ledger_operations",
			Help: "Ledger operations per method and status.",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(_ledgerMtc)
}

var _ lifecycle.StartStopper = (*Ledger)(nil)

type (
	// Ledger owns the token state. Updates are serialized by a single mutex and each one lands
	// as one atomic batch.
	Ledger struct {
		mu      sync.Mutex
		kv      db.KVStore
		clk     clock.Clock
		minters map[principal.Principal]struct{}
	}

	// Option sets a ledger option
	Option func(*Ledger)
)

// WithClock sets the clock stamping last_updated
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		l.clk = c
	}
}

// WithMinters sets the principals allowed to mint
func WithMinters(minters ...principal.Principal) Option {
	return func(l *Ledger) {
		for _, m := range minters {
			l.minters[m] = struct{}{}
		}
	}
}

// New creates a ledger on top of kv
func New(kv db.KVStore, opts ...Option) *Ledger {
	l := &Ledger{
		kv:      kv,
		clk:     clock.New(),
		minters: make(map[principal.Principal]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start opens the store and writes the token info on first start
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.kv.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start ledger store")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var info state.TokenInfo
	err := l.state(TokenInfoNamespace, _tokenInfoKey, &info)
	switch errors.Cause(err) {
	case nil:
		log.L().Info("Ledger restored.", zap.Uint64("totalSupply", info.TotalSupply))
		return nil
	case db.ErrNotExist:
		info = DefaultTokenInfo
		data, err := info.Serialize()
		if err != nil {
			return err
		}
		log.L().Info("Ledger initialized.", zap.String("symbol", info.Symbol))
		return l.kv.Put(TokenInfoNamespace, _tokenInfoKey, data)
	default:
		return err
	}
}

// Stop closes the store
func (l *Ledger) Stop(ctx context.Context) error {
	return l.kv.Stop(ctx)
}

// IsMinter tells whether p may mint
func (l *Ledger) IsMinter(p principal.Principal) bool {
	_, ok := l.minters[p]
	return ok
}

// BalanceOf returns the balance of p, 0 for unknown accounts
func (l *Ledger) BalanceOf(p principal.Principal) (uint64, error) {
	acct, _, err := l.account(p)
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Allowance returns how much spender may still move out of owner's account
func (l *Ledger) Allowance(owner, spender principal.Principal) (uint64, error) {
	acct, _, err := l.account(owner)
	if err != nil {
		return 0, err
	}
	amount, _ := acct.Allowance(spender)
	return amount, nil
}

// Account returns the account record of p
func (l *Ledger) Account(p principal.Principal) (*state.Account, error) {
	acct, exists, err := l.account(p)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Wrapf(ErrAccountNotFound, "principal %s", p)
	}
	return acct, nil
}

// TokenInfo returns the token description and total supply
func (l *Ledger) TokenInfo() (state.TokenInfo, error) {
	var info state.TokenInfo
	if err := l.state(TokenInfoNamespace, _tokenInfoKey, &info); err != nil {
		return info, err
	}
	return info, nil
}

// Audit checks that the total supply equals the sum of all balances
func (l *Ledger) Audit() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, err := l.TokenInfo()
	if err != nil {
		return err
	}
	var (
		sum      uint64
		overflow bool
	)
	if err := l.kv.ForEach(AccountsNamespace, func(_, v []byte) error {
		var acct state.Account
		if err := acct.Deserialize(v); err != nil {
			return err
		}
		s, err := state.SafeAdd(sum, acct.Balance)
		if err != nil {
			overflow = true
		}
		sum = s
		return nil
	}); err != nil {
		return err
	}
	if overflow || sum != info.TotalSupply {
		return errors.Wrapf(ErrSupplyMismatch, "total supply %d, sum of balances %d", info.TotalSupply, sum)
	}
	return nil
}

// account loads the account of p, an unknown principal yields a zero account
func (l *Ledger) account(p principal.Principal) (*state.Account, bool, error) {
	var acct state.Account
	err := l.state(AccountsNamespace, p[:], &acct)
	switch errors.Cause(err) {
	case nil:
		return &acct, true, nil
	case db.ErrNotExist:
		return &state.Account{}, false, nil
	default:
		return nil, false, err
	}
}

func (l *Ledger) state(ns string, key []byte, s state.Deserializer) error {
	data, err := l.kv.Get(ns, key)
	if err != nil {
		return err
	}
	return s.Deserialize(data)
}

func (l *Ledger) now() uint64 {
	return uint64(l.clk.Now().UnixNano())
}

func observe(method string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	_ledgerMtc.WithLabelValues(method, status).Inc()
}
