// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

const (
	// DBBolt is the bolt backend
	DBBolt = "boltdb"
	// DBPebble is the pebble backend
	DBPebble = "pebbledb"
	// DBMemory is the non-persistent in-memory backend
	DBMemory = "memory"
)

// Config is the config for database
type Config struct {
	DBType string `yaml:"dbType"`
	DbPath string `yaml:"dbPath"`
	// NumRetries is the number of retries of a bolt update
	NumRetries uint8 `yaml:"numRetries"`
	// MaxCacheSize is the number of records kept in the LRU read cache. 0 means disabled
	MaxCacheSize int `yaml:"maxCacheSize"`
	// ReadOnly is set db to be opened in read only mode
	ReadOnly bool `yaml:"readOnly"`
}

// DefaultConfig returns the default config
var DefaultConfig = Config{
	DBType:       DBBolt,
	NumRetries:   3,
	MaxCacheSize: 1024,
}
