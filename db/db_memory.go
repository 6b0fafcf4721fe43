// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/iotexproject/pollrush/db/batch"
)

const _btreeDegree = 32

type memItem struct {
	ns    string
	key   []byte
	value []byte
}

func memItemLess(a, b *memItem) bool {
	if c := strings.Compare(a.ns, b.ns); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.key, b.key) < 0
}

// memKVStore is the in-memory implementation of KVStore, ordered like the persistent stores
type memKVStore struct {
	mutex sync.RWMutex
	tree  *btree.BTreeG[*memItem]
}

// NewMemKVStore instantiates an in-memory KV store
func NewMemKVStore() KVStore {
	return &memKVStore{
		tree: btree.NewG[*memItem](_btreeDegree, memItemLess),
	}
}

func (m *memKVStore) Start(_ context.Context) error { return nil }

func (m *memKVStore) Stop(_ context.Context) error { return nil }

// Put inserts a <key, value> record
func (m *memKVStore) Put(namespace string, key, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.put(namespace, key, value)
	return nil
}

func (m *memKVStore) put(namespace string, key, value []byte) {
	m.tree.ReplaceOrInsert(&memItem{
		ns:    namespace,
		key:   append([]byte(nil), key...),
		value: append([]byte(nil), value...),
	})
}

// Get retrieves a record
func (m *memKVStore) Get(namespace string, key []byte) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	item, ok := m.tree.Get(&memItem{ns: namespace, key: key})
	if !ok {
		return nil, errors.Wrapf(ErrNotExist, "ns %s key = %x doesn't exist", namespace, key)
	}
	return append([]byte(nil), item.value...), nil
}

// Delete deletes a record
func (m *memKVStore) Delete(namespace string, key []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.tree.Delete(&memItem{ns: namespace, key: key})
	return nil
}

// WriteBatch commits a batch, the whole batch is validated before any entry is applied
func (m *memKVStore) WriteBatch(b batch.KVStoreBatch) (err error) {
	b.Lock()
	defer func() {
		recordWrite(DBMemory, err)
		if err == nil {
			b.ClearAndUnlock()
		} else {
			b.Unlock()
		}
	}()

	writes := make([]*batch.WriteInfo, 0, b.Size())
	for i := 0; i < b.Size(); i++ {
		write, err := b.Entry(i)
		if err != nil {
			return err
		}
		writes = append(writes, write)
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, write := range writes {
		switch write.WriteType() {
		case batch.Put:
			m.put(write.Namespace(), write.Key(), write.Value())
		case batch.Delete:
			m.tree.Delete(&memItem{ns: write.Namespace(), key: write.Key()})
		}
	}
	return nil
}

// Filter returns <k, v> pair in a bucket that meet the condition
func (m *memKVStore) Filter(namespace string, cond Condition, minKey, maxKey []byte) ([][]byte, [][]byte, error) {
	var fk, fv [][]byte
	m.mutex.RLock()
	m.tree.AscendGreaterOrEqual(&memItem{ns: namespace, key: minKey}, func(item *memItem) bool {
		if item.ns != namespace {
			return false
		}
		if len(maxKey) > 0 && bytes.Compare(item.key, maxKey) > 0 {
			return false
		}
		if cond(item.key, item.value) {
			fk = append(fk, append([]byte(nil), item.key...))
			fv = append(fv, append([]byte(nil), item.value...))
		}
		return true
	})
	m.mutex.RUnlock()
	if len(fk) == 0 {
		return nil, nil, errors.Wrap(ErrNotExist, "filter returns no match")
	}
	return fk, fv, nil
}

// ForEach iterates over all <k, v> pairs in a bucket
func (m *memKVStore) ForEach(namespace string, fn func(k, v []byte) error) error {
	var items []*memItem
	m.mutex.RLock()
	m.tree.AscendGreaterOrEqual(&memItem{ns: namespace}, func(item *memItem) bool {
		if item.ns != namespace {
			return false
		}
		items = append(items, item)
		return true
	})
	m.mutex.RUnlock()
	for _, item := range items {
		if err := fn(append([]byte(nil), item.key...), append([]byte(nil), item.value...)); err != nil {
			return err
		}
	}
	return nil
}
