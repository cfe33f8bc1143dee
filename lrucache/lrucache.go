// Copyright 2025, the lokal/textdomain contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package lrucache provides a thread-safe, fixed-capacity least-recently-used
(LRU) cache mapping string keys to string values. The cache evicts the least
recently used entry when it reaches capacity. When created with compression
enabled via [New], values may be stored zstd-compressed and are transparently
decompressed by [LRUCache.Get] and [LRUCache.Peek].
*/
package lrucache

import (
	"container/list"
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// compressThreshold is the minimum value length worth compressing.
// Translated UI strings are usually short; only long passages benefit.
const compressThreshold = 256

// LRUCache is a fixed-capacity, least-recently-used cache that is safe for
// concurrent use. Instances must be constructed with [New]; the zero value is
// not ready for use.
type LRUCache struct {
	size            int                      // maximum number of entries
	evictList       *list.List               // doubly-linked list managing eviction order
	items           map[string]*list.Element // maps keys to their linked-list elements
	lock            sync.RWMutex
	compressEnabled bool
	zstdEnc         *zstd.Encoder // reusable encoder for block operations
	zstdDec         *zstd.Decoder // reusable decoder for block operations
}

// cacheEntry holds the key/value pair stored in each linked-list element.
type cacheEntry struct {
	key        string
	value      string
	compressed bool
}

// New creates a cache with the specified maximum size.
//
// If compress is true, values longer than a small threshold are stored
// zstd-compressed when this reduces space, and are transparently
// decompressed on retrieval.
//
// It returns an error if size is not a positive integer.
func New(size int, compress bool) (*LRUCache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &LRUCache{
		size:            size,
		evictList:       list.New(),
		items:           make(map[string]*list.Element),
		compressEnabled: compress,
	}

	if compress {
		// A nil writer/reader lets us use EncodeAll/DecodeAll without streams.
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.zstdEnc = enc
		c.zstdDec = dec
	}

	return c, nil
}

// Add adds or updates the value for key.
//
// If the key exists, it becomes the most recently used.
// If the cache is at capacity, the least recently used item is evicted.
// Add reports whether an eviction occurred.
func (c *LRUCache) Add(key, value string) bool {
	// Compress outside the lock.
	stored, compressed := c.prepareValue(value)

	c.lock.Lock()
	defer c.lock.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)

		if cacheEnt, ok := ent.Value.(*cacheEntry); ok {
			cacheEnt.value = stored
			cacheEnt.compressed = compressed
		}

		return false
	}

	c.items[key] = c.evictList.PushFront(&cacheEntry{
		key:        key,
		value:      stored,
		compressed: compressed,
	})

	evicted := c.evictList.Len() > c.size
	if evicted {
		c.removeOldest()
	}

	return evicted
}

// Get retrieves the value for key and marks it as most recently used.
// The second result reports whether the key was found.
func (c *LRUCache) Get(key string) (string, bool) {
	// Lock for write since we move the element to the front.
	c.lock.Lock()

	ent, ok := c.items[key]
	if !ok {
		c.lock.Unlock()
		return "", false
	}

	c.evictList.MoveToFront(ent)

	cacheEnt, ok := ent.Value.(*cacheEntry)
	if !ok {
		c.lock.Unlock()
		return "", false
	}

	stored, compressed := cacheEnt.value, cacheEnt.compressed

	c.lock.Unlock()

	return c.restoreValue(stored, compressed)
}

// Peek retrieves the value for key without modifying the LRU order.
// The second result reports whether the key was found.
func (c *LRUCache) Peek(key string) (string, bool) {
	c.lock.RLock()

	ent, ok := c.items[key]
	if !ok {
		c.lock.RUnlock()
		return "", false
	}

	cacheEnt, ok := ent.Value.(*cacheEntry)
	if !ok {
		c.lock.RUnlock()
		return "", false
	}

	stored, compressed := cacheEnt.value, cacheEnt.compressed

	c.lock.RUnlock()

	return c.restoreValue(stored, compressed)
}

// Remove deletes the entry associated with key from the cache.
// Remove reports whether the key was present and removed.
func (c *LRUCache) Remove(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if ent, ok := c.items[key]; ok {
		c.removeElement(ent)

		return true
	}

	return false
}

// Purge removes every entry from the cache.
func (c *LRUCache) Purge() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.evictList.Init()
	c.items = make(map[string]*list.Element)
}

// Keys returns a slice of all keys in the cache, from the oldest to the newest.
func (c *LRUCache) Keys() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()

	keys := make([]string, len(c.items))
	index := 0

	// The back of the list is the oldest entry.
	for ent := c.evictList.Back(); ent != nil; ent = ent.Prev() {
		if cacheEnt, ok := ent.Value.(*cacheEntry); ok {
			keys[index] = cacheEnt.key
			index++
		}
	}

	return keys
}

// Len returns the current number of items in the cache.
func (c *LRUCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.evictList.Len()
}

// prepareValue compresses value when compression is enabled and worthwhile.
func (c *LRUCache) prepareValue(value string) (string, bool) {
	if !c.compressEnabled || len(value) < compressThreshold {
		return value, false
	}

	encoded := c.zstdEnc.EncodeAll([]byte(value), nil)
	if len(encoded) >= len(value) {
		return value, false
	}

	return string(encoded), true
}

// restoreValue reverses prepareValue.
func (c *LRUCache) restoreValue(stored string, compressed bool) (string, bool) {
	if !compressed {
		return stored, true
	}

	decoded, err := c.zstdDec.DecodeAll([]byte(stored), nil)
	if err != nil {
		// Corrupted entry; treat as a miss.
		return "", false
	}

	return string(decoded), true
}

// removeOldest removes the oldest item from both the linked list and the map.
func (c *LRUCache) removeOldest() {
	if ent := c.evictList.Back(); ent != nil {
		c.removeElement(ent)
	}
}

// removeElement removes a specific list element from the eviction list and
// deletes it from the map.
func (c *LRUCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)

	if kv, ok := e.Value.(*cacheEntry); ok {
		delete(c.items, kv.key)
	}
}
