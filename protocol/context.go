// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

// Package protocol carries the per-request context shared by the poll service and the token ledger.
package protocol

import (
	"context"
	"log"

	"github.com/iotexproject/pollrush/principal"
)

type callerCtxKey struct{}

// CallerCtx provides an operation with the identity of whoever invoked it.
type CallerCtx struct {
	// Caller is the authenticated principal, principal.Anonymous when unauthenticated
	Caller principal.Principal
	// RequestID correlates log lines of one request
	RequestID string
}

// WithCallerCtx adds CallerCtx into context.
func WithCallerCtx(ctx context.Context, cc CallerCtx) context.Context {
	return context.WithValue(ctx, callerCtxKey{}, cc)
}

// WithCaller is a shortcut adding a CallerCtx with only the caller set
func WithCaller(ctx context.Context, caller principal.Principal) context.Context {
	return WithCallerCtx(ctx, CallerCtx{Caller: caller})
}

// GetCallerCtx gets caller context
func GetCallerCtx(ctx context.Context) (CallerCtx, bool) {
	cc, ok := ctx.Value(callerCtxKey{}).(CallerCtx)
	return cc, ok
}

// MustGetCallerCtx must get caller context. If context doesn't exist, this function panic.
func MustGetCallerCtx(ctx context.Context) CallerCtx {
	cc, ok := ctx.Value(callerCtxKey{}).(CallerCtx)
	if !ok {
		log.Panic("Miss caller context")
	}
	return cc
}
