// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/iotexproject/pollrush/principal"
)

const _defaultRateLimitCallers = 4096

// callerLimiter keeps one token bucket per caller
type callerLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters *lru.Cache[principal.Principal, *rate.Limiter]
}

func newCallerLimiter(cfg Config) *callerLimiter {
	limit, burst := rate.Limit(cfg.RateLimit), cfg.RateBurst
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	size := cfg.RateLimitCallers
	if size <= 0 {
		size = _defaultRateLimitCallers
	}
	// size is positive, New cannot fail
	limiters, _ := lru.New[principal.Principal, *rate.Limiter](size)
	return &callerLimiter{
		limit:    limit,
		burst:    burst,
		limiters: limiters,
	}
}

// Allow consumes one request of caller
func (cl *callerLimiter) Allow(caller principal.Principal) bool {
	if cl.limit == rate.Inf {
		return true
	}
	cl.mu.Lock()
	limiter, ok := cl.limiters.Get(caller)
	if !ok {
		limiter = rate.NewLimiter(cl.limit, cl.burst)
		cl.limiters.Add(caller, limiter)
	}
	cl.mu.Unlock()
	return limiter.Allow()
}
