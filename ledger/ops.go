// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/db"
	"github.com/iotexproject/pollrush/db/batch"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/util/byteutil"
	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/protocol"
	"github.com/iotexproject/pollrush/state"
)

type (
	mintConfig struct {
		memo string
	}

	// MintOption sets a mint option
	MintOption func(*mintConfig)
)

// WithMemo tags a mint with a memo. A memo the same minter already applied makes the mint a
// successful no-op, so a caller may retry a mint whose outcome it did not observe.
func WithMemo(memo string) MintOption {
	return func(cfg *mintConfig) {
		cfg.memo = memo
	}
}

// Transfer moves amount from the caller to `to`
func (l *Ledger) Transfer(ctx context.Context, to principal.Principal, amount uint64) (err error) {
	defer func() { observe("transfer", err) }()
	caller := protocol.MustGetCallerCtx(ctx).Caller

	l.mu.Lock()
	defer l.mu.Unlock()
	from, _, err := l.account(caller)
	if err != nil {
		return err
	}
	if err := from.SubBalance(amount); err != nil {
		return errors.Wrapf(ErrInsufficientBalance, "%s holds %d, transfer %d", caller, from.Balance, amount)
	}
	now := l.now()
	from.LastUpdated = now
	b := batch.NewBatch()
	if to == caller {
		// a self transfer only refreshes last_updated
		from.Balance += amount
		if err := l.putAccount(b, caller, from); err != nil {
			return err
		}
		return l.kv.WriteBatch(b)
	}
	recipient, _, err := l.account(to)
	if err != nil {
		return err
	}
	if err := recipient.AddBalance(amount); err != nil {
		return errors.Wrapf(ErrOverflow, "credit %d to %s", amount, to)
	}
	recipient.LastUpdated = now
	if err := l.putAccount(b, caller, from); err != nil {
		return err
	}
	if err := l.putAccount(b, to, recipient); err != nil {
		return err
	}
	if err := l.kv.WriteBatch(b); err != nil {
		return err
	}
	log.L().Debug("Transferred.",
		zap.Stringer("from", caller),
		zap.Stringer("to", to),
		zap.Uint64("amount", amount))
	return nil
}

// Approve sets the allowance of spender on the caller's account, zero revokes it
func (l *Ledger) Approve(ctx context.Context, spender principal.Principal, amount uint64) (err error) {
	defer func() { observe("approve", err) }()
	caller := protocol.MustGetCallerCtx(ctx).Caller

	l.mu.Lock()
	defer l.mu.Unlock()
	acct, _, err := l.account(caller)
	if err != nil {
		return err
	}
	if _, ok := acct.Allowance(spender); !ok && amount > 0 && len(acct.Allowances) >= state.MaxAllowances {
		return errors.Wrapf(ErrTooManyAllowances, "%s already approved %d spenders", caller, len(acct.Allowances))
	}
	acct.SetAllowance(spender, amount)
	acct.LastUpdated = l.now()
	b := batch.NewBatch()
	if err := l.putAccount(b, caller, acct); err != nil {
		return err
	}
	return l.kv.WriteBatch(b)
}

// TransferFrom moves amount from `from` to `to` on behalf of the caller, spending the allowance
// `from` granted to the caller
func (l *Ledger) TransferFrom(ctx context.Context, from, to principal.Principal, amount uint64) (err error) {
	defer func() { observe("transferFrom", err) }()
	spender := protocol.MustGetCallerCtx(ctx).Caller

	l.mu.Lock()
	defer l.mu.Unlock()
	owner, _, err := l.account(from)
	if err != nil {
		return err
	}
	allowance, ok := owner.Allowance(spender)
	if !ok {
		return errors.Wrapf(ErrNoAllowance, "%s has no allowance from %s", spender, from)
	}
	if allowance < amount {
		return errors.Wrapf(ErrInsufficientAllowance, "allowance %d, transfer %d", allowance, amount)
	}
	if err := owner.SubBalance(amount); err != nil {
		return errors.Wrapf(ErrInsufficientBalance, "%s holds %d, transfer %d", from, owner.Balance, amount)
	}
	owner.SetAllowance(spender, allowance-amount)
	now := l.now()
	owner.LastUpdated = now
	b := batch.NewBatch()
	if to == from {
		owner.Balance += amount
	} else {
		recipient, _, err := l.account(to)
		if err != nil {
			return err
		}
		if err := recipient.AddBalance(amount); err != nil {
			return errors.Wrapf(ErrOverflow, "credit %d to %s", amount, to)
		}
		recipient.LastUpdated = now
		if err := l.putAccount(b, to, recipient); err != nil {
			return err
		}
	}
	if err := l.putAccount(b, from, owner); err != nil {
		return err
	}
	return l.kv.WriteBatch(b)
}

// Mint credits amount to `to` and grows the total supply. Only minters may call it.
func (l *Ledger) Mint(ctx context.Context, to principal.Principal, amount uint64, opts ...MintOption) (err error) {
	defer func() { observe("mint", err) }()
	caller := protocol.MustGetCallerCtx(ctx).Caller
	if !l.IsMinter(caller) {
		return errors.Wrapf(ErrUnauthorized, "%s is not a minter", caller)
	}
	cfg := mintConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	var memoKey []byte
	if cfg.memo != "" {
		memoKey = append(caller.Bytes(), cfg.memo...)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if memoKey != nil {
		_, err := l.kv.Get(MintMemosNamespace, memoKey)
		switch errors.Cause(err) {
		case nil:
			log.L().Info("Mint already applied.", zap.String("memo", cfg.memo))
			return nil
		case db.ErrNotExist:
		default:
			return err
		}
	}
	info, err := l.TokenInfo()
	if err != nil {
		return err
	}
	supply, err := state.SafeAdd(info.TotalSupply, amount)
	if err != nil {
		return errors.Wrapf(ErrOverflow, "total supply %d, mint %d", info.TotalSupply, amount)
	}
	acct, _, err := l.account(to)
	if err != nil {
		return err
	}
	if err := acct.AddBalance(amount); err != nil {
		return errors.Wrapf(ErrOverflow, "credit %d to %s", amount, to)
	}
	now := l.now()
	acct.LastUpdated = now
	info.TotalSupply = supply

	b := batch.NewBatch()
	if err := l.putAccount(b, to, acct); err != nil {
		return err
	}
	data, err := info.Serialize()
	if err != nil {
		return err
	}
	b.Put(TokenInfoNamespace, _tokenInfoKey, data, "failed to put token info")
	if memoKey != nil {
		b.Put(MintMemosNamespace, memoKey, byteutil.Uint64ToBytesBigEndian(now), "failed to put memo %s", cfg.memo)
	}
	if err := l.kv.WriteBatch(b); err != nil {
		return err
	}
	log.L().Debug("Minted.",
		zap.Stringer("to", to),
		zap.Uint64("amount", amount),
		zap.String("memo", cfg.memo))
	return nil
}

func (l *Ledger) putAccount(b batch.KVStoreBatch, p principal.Principal, acct *state.Account) error {
	data, err := acct.Serialize()
	if err != nil {
		return err
	}
	b.Put(AccountsNamespace, p.Bytes(), data, "failed to put account %s", p)
	return nil
}
