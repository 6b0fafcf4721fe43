// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package db

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/iotexproject/pollrush/db/batch"
)

type cacheKey struct {
	ns  string
	key string
}

// kvStoreWithCache wraps a KVStore with an LRU cache of the latest values read or written.
// Writes hold the exclusive lock until the cache is updated, so a concurrent miss can never
// cache a value older than the store.
type kvStoreWithCache struct {
	mutex sync.RWMutex
	store KVStore
	cache *lru.Cache[cacheKey, []byte]
}

// NewKVStoreWithCache wraps kvstore with a cache of size entries
func NewKVStoreWithCache(kvstore KVStore, size int) (KVStore, error) {
	cache, err := lru.New[cacheKey, []byte](size)
	if err != nil {
		return nil, errors.Wrap(ErrInvalid, err.Error())
	}
	return &kvStoreWithCache{
		store: kvstore,
		cache: cache,
	}, nil
}

// Start starts the kvStoreWithCache
func (kvc *kvStoreWithCache) Start(ctx context.Context) error {
	return kvc.store.Start(ctx)
}

// Stop stops the kvStoreWithCache
func (kvc *kvStoreWithCache) Stop(ctx context.Context) error {
	kvc.mutex.Lock()
	defer kvc.mutex.Unlock()
	kvc.cache.Purge()
	return kvc.store.Stop(ctx)
}

// Put inserts a <key, value> record into the cache and kvstore
func (kvc *kvStoreWithCache) Put(namespace string, key, value []byte) error {
	kvc.mutex.Lock()
	defer kvc.mutex.Unlock()
	if err := kvc.store.Put(namespace, key, value); err != nil {
		return err
	}
	kvc.cache.Add(cacheKey{namespace, string(key)}, append([]byte(nil), value...))
	return nil
}

// Get retrieves a record from the cache, and if not cached, from kvstore
func (kvc *kvStoreWithCache) Get(namespace string, key []byte) ([]byte, error) {
	ck := cacheKey{namespace, string(key)}
	kvc.mutex.RLock()
	defer kvc.mutex.RUnlock()
	if v, ok := kvc.cache.Get(ck); ok {
		return append([]byte(nil), v...), nil
	}
	v, err := kvc.store.Get(namespace, key)
	if err != nil {
		return nil, err
	}
	kvc.cache.Add(ck, append([]byte(nil), v...))
	return v, nil
}

// Delete deletes a record from the cache and kvstore
func (kvc *kvStoreWithCache) Delete(namespace string, key []byte) error {
	kvc.mutex.Lock()
	defer kvc.mutex.Unlock()
	if err := kvc.store.Delete(namespace, key); err != nil {
		return err
	}
	kvc.cache.Remove(cacheKey{namespace, string(key)})
	return nil
}

// WriteBatch commits the batch to kvstore, then applies its writes to the cache
func (kvc *kvStoreWithCache) WriteBatch(b batch.KVStoreBatch) error {
	b.Lock()
	writes := make([]*batch.WriteInfo, 0, b.Size())
	for i := 0; i < b.Size(); i++ {
		write, err := b.Entry(i)
		if err != nil {
			b.Unlock()
			return err
		}
		writes = append(writes, write)
	}
	b.Unlock()

	kvc.mutex.Lock()
	defer kvc.mutex.Unlock()
	if err := kvc.store.WriteBatch(b); err != nil {
		// drop every key the failed batch touched
		for _, write := range writes {
			kvc.cache.Remove(cacheKey{write.Namespace(), string(write.Key())})
		}
		return err
	}
	for _, write := range writes {
		ck := cacheKey{write.Namespace(), string(write.Key())}
		switch write.WriteType() {
		case batch.Put:
			kvc.cache.Add(ck, write.Value())
		case batch.Delete:
			kvc.cache.Remove(ck)
		}
	}
	return nil
}

// Filter returns <k, v> pair in a bucket that meet the condition
func (kvc *kvStoreWithCache) Filter(namespace string, cond Condition, minKey, maxKey []byte) ([][]byte, [][]byte, error) {
	return kvc.store.Filter(namespace, cond, minKey, maxKey)
}

// ForEach iterates over all <k, v> pairs in a bucket
func (kvc *kvStoreWithCache) ForEach(namespace string, fn func(k, v []byte) error) error {
	return kvc.store.ForEach(namespace, fn)
}
