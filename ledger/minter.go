// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package ledger

import (
	"context"

	"github.com/iotexproject/pollrush/principal"
	"github.com/iotexproject/pollrush/protocol"
)

// LocalMinter mints on an in-process ledger under a fixed service principal
type LocalMinter struct {
	ledger *Ledger
	self   principal.Principal
}

// NewLocalMinter creates a minter calling l as self
func NewLocalMinter(l *Ledger, self principal.Principal) *LocalMinter {
	return &LocalMinter{ledger: l, self: self}
}

// Mint credits amount to `to`, memo makes retries idempotent
func (m *LocalMinter) Mint(ctx context.Context, to principal.Principal, amount uint64, memo string) error {
	cc, _ := protocol.GetCallerCtx(ctx)
	cc.Caller = m.self
	return m.ledger.Mint(protocol.WithCallerCtx(ctx, cc), to, amount, WithMemo(memo))
}
