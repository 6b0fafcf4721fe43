// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package lifecycle

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	// ErrWrongState is returned when turning on a ready service or turning off a stopped one
	ErrWrongState = errors.New("service is in wrong state")
	// ErrNotReady is returned by services asked to serve before they started
	ErrNotReady = errors.New("service is not ready")
)

// Readiness is a thread-safe flag telling whether a service accepts requests
type Readiness struct {
	ready atomic.Bool
}

// TurnOn marks the service ready
func (r *Readiness) TurnOn() error {
	if r.ready.CompareAndSwap(false, true) {
		return nil
	}
	return ErrWrongState
}

// TurnOff marks the service not ready, which is also the initial state
func (r *Readiness) TurnOff() error {
	if r.ready.CompareAndSwap(true, false) {
		return nil
	}
	return ErrWrongState
}

// IsReady returns whether the service accepts requests
func (r *Readiness) IsReady() bool {
	return r.ready.Load()
}
