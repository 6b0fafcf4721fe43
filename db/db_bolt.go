// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/iotexproject/pollrush/db/batch"
	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/util/fileutil"
)

const fileMode = 0600

// BoltDB is KVStore implementation based bolt DB, one bucket per namespace
type BoltDB struct {
	lifecycle.Readiness
	db     *bolt.DB
	path   string
	config Config
}

// NewBoltDB instantiates an BoltDB with implements KVStore
func NewBoltDB(cfg Config) *BoltDB {
	if cfg.NumRetries == 0 {
		cfg.NumRetries = 1
	}
	return &BoltDB{
		db:     nil,
		path:   cfg.DbPath,
		config: cfg,
	}
}

// Start opens the BoltDB (creates new file if not existing yet)
func (b *BoltDB) Start(_ context.Context) error {
	if err := fileutil.EnsureParentDir(b.path); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	db, err := bolt.Open(b.path, fileMode, &bolt.Options{ReadOnly: b.config.ReadOnly})
	if err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	b.db = db
	return b.TurnOn()
}

// Stop closes the BoltDB
func (b *BoltDB) Stop(_ context.Context) error {
	if err := b.TurnOff(); err != nil {
		return err
	}
	if err := b.db.Close(); err != nil {
		return errors.Wrap(ErrIO, err.Error())
	}
	return nil
}

// Put inserts a <key, value> record
func (b *BoltDB) Put(namespace string, key, value []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return b.update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(namespace))
		if err != nil {
			return err
		}
		return bucket.Put(key, value)
	})
}

// Get retrieves a record
func (b *BoltDB) Get(namespace string, key []byte) ([]byte, error) {
	if !b.IsReady() {
		return nil, ErrDBNotStarted
	}
	var value []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return errors.Wrapf(ErrNotExist, "bucket = %s doesn't exist", namespace)
		}
		v := bucket.Get(key)
		if v == nil {
			return errors.Wrapf(ErrNotExist, "key = %x doesn't exist", key)
		}
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err == nil {
		return value, nil
	}
	if errors.Cause(err) == ErrNotExist {
		return nil, err
	}
	return nil, errors.Wrap(ErrIO, err.Error())
}

// Delete deletes a record
func (b *BoltDB) Delete(namespace string, key []byte) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return b.update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		return bucket.Delete(key)
	})
}

// WriteBatch commits a batch in a single bolt transaction
func (b *BoltDB) WriteBatch(kvsb batch.KVStoreBatch) (err error) {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	kvsb.Lock()
	defer func() {
		recordWrite(DBBolt, err)
		if err == nil {
			kvsb.ClearAndUnlock()
		} else {
			kvsb.Unlock()
		}
	}()

	return b.update(func(tx *bolt.Tx) error {
		for i := 0; i < kvsb.Size(); i++ {
			write, err := kvsb.Entry(i)
			if err != nil {
				return err
			}
			switch write.WriteType() {
			case batch.Put:
				bucket, err := tx.CreateBucketIfNotExists([]byte(write.Namespace()))
				if err != nil {
					return errors.Wrap(err, write.Error())
				}
				if err := bucket.Put(write.Key(), write.Value()); err != nil {
					return errors.Wrap(err, write.Error())
				}
			case batch.Delete:
				bucket := tx.Bucket([]byte(write.Namespace()))
				if bucket == nil {
					continue
				}
				if err := bucket.Delete(write.Key()); err != nil {
					return errors.Wrap(err, write.Error())
				}
			}
		}
		return nil
	})
}

// Filter returns <k, v> pair in a bucket that meet the condition
func (b *BoltDB) Filter(namespace string, cond Condition, minKey, maxKey []byte) ([][]byte, [][]byte, error) {
	if !b.IsReady() {
		return nil, nil, ErrDBNotStarted
	}
	var fk, fv [][]byte
	if err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return errors.Wrapf(ErrNotExist, "bucket = %s doesn't exist", namespace)
		}
		c := bucket.Cursor()
		k, v := c.Seek(minKey)
		if k == nil {
			return nil
		}
		for ; k != nil; k, v = c.Next() {
			if len(maxKey) > 0 && bytes.Compare(k, maxKey) > 0 {
				break
			}
			if cond(k, v) {
				fk = append(fk, append([]byte(nil), k...))
				fv = append(fv, append([]byte(nil), v...))
			}
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}
	if len(fk) == 0 {
		return nil, nil, errors.Wrap(ErrNotExist, "filter returns no match")
	}
	return fk, fv, nil
}

// ForEach iterates over all <k, v> pairs in a bucket
func (b *BoltDB) ForEach(namespace string, fn func(k, v []byte) error) error {
	if !b.IsReady() {
		return ErrDBNotStarted
	}
	return b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(namespace))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			return fn(append([]byte(nil), k...), append([]byte(nil), v...))
		})
	})
}

func (b *BoltDB) update(fn func(*bolt.Tx) error) (err error) {
	for c := uint8(0); c < b.config.NumRetries; c++ {
		if err = b.db.Update(fn); err == nil {
			return nil
		}
		if errors.Cause(err) == batch.ErrOutOfBound {
			break
		}
	}
	return errors.Wrap(ErrIO, err.Error())
}
