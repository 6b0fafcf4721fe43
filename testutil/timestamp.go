// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package testutil

import (
	"time"

	"github.com/facebookgo/clock"
)

// Epoch is the starting instant of mock clocks returned by NewMockClock
var Epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewMockClock returns a mock clock set to Epoch
func NewMockClock() *clock.Mock {
	c := clock.NewMock()
	c.Add(Epoch.Sub(c.Now()))
	return c
}

// TimestampNowFromClock returns the nanosecond timestamp of a clock
func TimestampNowFromClock(c clock.Clock) uint64 {
	return uint64(c.Now().UnixNano())
}
