// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"bytes"
	"context"
	"syscall"

	"github.com/cockroachdb/pebble"
	"github.com/iotexproject/go-pkgs/hash"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/db/batch"
	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
)

const (
	prefixLength = 8
)

// PebbleDB is KVStore implementation based on pebble DB. A namespace maps to an 8-byte hash prefix
// of the stored key.
type PebbleDB struct {
	lifecycle.Readiness
	db     *pebble.DB
	path   string
	config Config
}

// NewPebbleDB creates a new PebbleDB instance
func NewPebbleDB(cfg Config) *PebbleDB {
	return &PebbleDB{
		db:     nil,
		path:   cfg.DbPath,
		config: cfg,
	}
}

// Start opens the DB (creates new file if not existing yet)
func (b *PebbleDB) Start(_ context.Context) error {
	comparer := *pebble.DefaultComparer
	comparer.Split = func(a []byte) int {
		if len(a) < prefixLength {
			return len(a)
		}
		return prefixLength
	}
	db, err := pebble.Open(b.path, &pebble.Options{
		Comparer:           &comparer,
		FormatMajorVersion: pebble.FormatPrePebblev1MarkedCompacted,
		ReadOnly:           b.config.ReadOnly,
	})
	if err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	b.db = db
	return b.TurnOn()
}

// Stop closes the DB
func (b *PebbleDB) Stop(_ context.Context) error {
	if err := b.TurnOff(); err != nil {
		return err
	}
	if err := b.db.Close(); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// Get retrieves a record
func (b *PebbleDB) Get(ns string, key []byte) ([]byte, error) {
	if !b.IsReady() {
		return nil, ErrDBNotStarted
	}
	v, closer, err := b.db.Get(nsKey(ns, key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotExist, "ns %s key = %x doesn't exist", ns, key)
		}
		return nil, errors.Wrap(ErrIO, err.Error())
	}
	val := make([]byte, len(v))
	copy(val, v)
	return val, closer.Close()
}

// Put inserts a <key, value> record
func (b *PebbleDB) Put(ns string, key, value []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return checkPebbleErr(b.db.Set(nsKey(ns, key), value, pebble.Sync), "put")
}

// Delete deletes a record
func (b *PebbleDB) Delete(ns string, key []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return checkPebbleErr(b.db.Delete(nsKey(ns, key), pebble.Sync), "delete")
}

// WriteBatch commits a batch
func (b *PebbleDB) WriteBatch(kvsb batch.KVStoreBatch) (err error) {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	kvsb.Lock()
	defer func() {
		recordWrite(DBPebble, err)
		if err == nil {
			kvsb.ClearAndUnlock()
		} else {
			kvsb.Unlock()
		}
	}()

	pb := b.db.NewBatch()
	defer pb.Close()
	for i := 0; i < kvsb.Size(); i++ {
		write, e := kvsb.Entry(i)
		if e != nil {
			return e
		}
		switch write.WriteType() {
		case batch.Put:
			e = pb.Set(nsKey(write.Namespace(), write.Key()), write.Value(), nil)
		case batch.Delete:
			e = pb.Delete(nsKey(write.Namespace(), write.Key()), nil)
		}
		if e != nil {
			return errors.Wrap(e, write.Error())
		}
	}
	return checkPebbleErr(pb.Commit(pebble.Sync), "write batch")
}

// Filter returns <k, v> pair in a bucket that meet the condition
func (b *PebbleDB) Filter(ns string, cond Condition, minKey []byte, maxKey []byte) (keys [][]byte, vals [][]byte, err error) {
	if !b.IsReady() {
		return nil, nil, ErrDBNotStarted
	}
	err = b.iterate(ns, minKey, func(k, v []byte) (bool, error) {
		if len(maxKey) > 0 && bytes.Compare(k, maxKey) > 0 {
			return false, nil
		}
		if cond(k, v) {
			keys = append(keys, k)
			vals = append(vals, v)
		}
		return true, nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(keys) == 0 {
		return nil, nil, errors.Wrap(ErrNotExist, "filter returns no match")
	}
	return keys, vals, nil
}

// ForEach iterates over all <k, v> pairs in a bucket
func (b *PebbleDB) ForEach(ns string, fn func(k, v []byte) error) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return b.iterate(ns, nil, func(k, v []byte) (bool, error) {
		return true, fn(k, v)
	})
}

func (b *PebbleDB) iterate(ns string, from []byte, fn func(k, v []byte) (bool, error)) error {
	iter, err := b.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return errors.Wrap(err, "failed to create iterator")
	}
	defer func() {
		if e := iter.Close(); e != nil {
			log.L().Error("Failed to close iterator", zap.Error(e))
		}
	}()
	for iter.SeekPrefixGE(nsKey(ns, from)); iter.Valid(); iter.Next() {
		k, err := decodeKey(iter.Key())
		if err != nil {
			return err
		}
		cont, err := fn(append([]byte(nil), k...), append([]byte(nil), iter.Value()...))
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return nil
}

func checkPebbleErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOSPC) {
		log.L().Fatal("Failed to "+op+" db.", zap.Error(err))
	}
	return errors.Wrap(ErrIO, err.Error())
}

func nsKey(ns string, key []byte) []byte {
	nk := nsToPrefix(ns)
	return append(nk, key...)
}

func nsToPrefix(ns string) []byte {
	h := hash.Hash160b([]byte(ns))
	return append([]byte(nil), h[:prefixLength]...)
}

func decodeKey(k []byte) (key []byte, err error) {
	if len(k) < prefixLength {
		return nil, errors.New("key is too short")
	}
	return k[prefixLength:], nil
}
