// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iotexproject/pollrush/db/batch"
	"github.com/iotexproject/pollrush/pkg/lifecycle"
)

var (
	// ErrNotExist indicates certain item does not exist in DB
	ErrNotExist = errors.New("not exist in DB")
	// ErrIO indicates the generic error of DB I/O operation
	ErrIO = errors.New("DB I/O operation error")
	// ErrDBNotStarted indicates the DB is used before Start or after Stop
	ErrDBNotStarted = errors.New("DB is not started")
	// ErrInvalid indicates an invalid argument
	ErrInvalid = errors.New("invalid argument")
)

var _dbWriteMtc = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pollrush_db_batch_writes",
		Help: "Number of batch writes per backend and status.",
	},
	[]string{"backend", "status"},
)

func init() {
	prometheus.MustRegister(_dbWriteMtc)
}

type (
	// Condition spells the condition for <k, v> to be filtered out
	Condition func(k, v []byte) bool

	// KVStore is a sorted, namespaced key-value store. Writes that must land together go
	// through WriteBatch, which is atomic.
	KVStore interface {
		lifecycle.StartStopper

		// Put insert or update a record identified by (namespace, key)
		Put(string, []byte, []byte) error
		// Get gets a record by (namespace, key)
		Get(string, []byte) ([]byte, error)
		// Delete deletes a record by (namespace, key)
		Delete(string, []byte) error
		// WriteBatch commits a batch
		WriteBatch(batch.KVStoreBatch) error
		// Filter returns <k, v> pairs in a bucket with minKey <= k <= maxKey that meet the condition,
		// in key order. An empty maxKey means no upper bound.
		Filter(string, Condition, []byte, []byte) ([][]byte, [][]byte, error)
		// ForEach iterates over all <k, v> pairs in a bucket in key order
		ForEach(string, func(k, v []byte) error) error
	}
)

// ScanPrefix returns all <k, v> pairs of a namespace whose key starts with prefix, in key order.
// No match yields empty slices and no error.
func ScanPrefix(kv KVStore, ns string, prefix []byte) ([][]byte, [][]byte, error) {
	keys, vals, err := kv.Filter(ns, func(k, _ []byte) bool {
		return bytes.HasPrefix(k, prefix)
	}, prefix, prefixEnd(prefix))
	if errors.Cause(err) == ErrNotExist {
		return nil, nil, nil
	}
	return keys, vals, err
}

// prefixEnd returns the smallest key greater than every key starting with prefix, or nil if
// there is none
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

func recordWrite(backend string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	_dbWriteMtc.WithLabelValues(backend, status).Inc()
}
