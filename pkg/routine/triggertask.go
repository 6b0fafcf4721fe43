// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package routine

import (
	"context"
	"sync"

	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
)

var _ lifecycle.StartStopper = (*TriggerTask)(nil)

// TriggerTask runs its callback on demand in a single goroutine. Triggers arriving while the
// callback runs are coalesced into one pending run.
type TriggerTask struct {
	lifecycle.Readiness
	cb Task
	ch chan struct{}
	mu sync.Mutex
	wg sync.WaitGroup
}

// NewTriggerTask creates an instance of TriggerTask
func NewTriggerTask(cb Task) *TriggerTask {
	return &TriggerTask{
		cb: cb,
		ch: make(chan struct{}, 1),
	}
}

// Start starts the task
func (t *TriggerTask) Start(_ context.Context) error {
	ready := make(chan struct{})
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		close(ready)
		for range t.ch {
			t.cb()
		}
	}()
	<-ready
	return t.TurnOn()
}

// Trigger schedules a run without blocking, it returns false if the task is stopped or a run is
// already pending
func (t *TriggerTask) Trigger() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.IsReady() {
		log.S().Warn("trigger task is not ready")
		return false
	}
	select {
	case t.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Stop stops the task after the pending run finishes
func (t *TriggerTask) Stop(_ context.Context) error {
	t.mu.Lock()
	if err := t.TurnOff(); err != nil {
		t.mu.Unlock()
		return err
	}
	close(t.ch)
	t.mu.Unlock()
	t.wg.Wait()
	return nil
}
