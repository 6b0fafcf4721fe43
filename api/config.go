// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package api

import "time"

// Config is the api service config
type Config struct {
	Port int `yaml:"port"`
	// MaxRequests is the number of requests served concurrently
	MaxRequests int64 `yaml:"maxRequests"`
	// AcquireTimeout is how long a request waits for a slot before being rejected
	AcquireTimeout time.Duration `yaml:"acquireTimeout"`
	// MaxBodySize is the byte limit of a request body
	MaxBodySize int64 `yaml:"maxBodySize"`
	// RateLimit is the number of requests per second one caller may send, 0 disables the limit
	RateLimit float64 `yaml:"rateLimit"`
	// RateBurst is the number of requests one caller may send at once
	RateBurst int `yaml:"rateBurst"`
	// RateLimitCallers is the number of callers whose rate is tracked, least recent ones are forgotten
	RateLimitCallers int `yaml:"rateLimitCallers"`
}

// DefaultConfig is the default config
var DefaultConfig = Config{
	Port:             14080,
	MaxRequests:      256,
	AcquireTimeout:   10 * time.Second,
	MaxBodySize:      1 << 20,
	RateLimit:        100,
	RateBurst:        200,
	RateLimitCallers: 4096,
}
