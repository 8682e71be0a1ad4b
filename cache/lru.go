// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache provides a typed LRU cache.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// LRU is a typed wrapper around golang-lru that also counts hits and misses.
type LRU[K comparable, V any] struct {
	c         *lru.Cache
	hit, miss atomic.Int64
}

// NewLRU creates an LRU holding at most maxSize entries. maxSize must be > 0.
func NewLRU[K comparable, V any](maxSize int) (*LRU[K, V], error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU[K, V]{c: c}, nil
}

func (l *LRU[K, V]) Get(key K) (V, bool) {
	if v, ok := l.c.Get(key); ok {
		l.hit.Add(1)
		return v.(V), true
	}
	l.miss.Add(1)
	var zero V
	return zero, false
}

func (l *LRU[K, V]) Add(key K, value V) {
	l.c.Add(key, value)
}

func (l *LRU[K, V]) Purge() {
	l.c.Purge()
}

func (l *LRU[K, V]) Len() int {
	return l.c.Len()
}

// GetOrLoad returns the cached value for key, calling load on a miss.
// Failed loads are not cached.
func (l *LRU[K, V]) GetOrLoad(key K, load func(K) (V, error)) (V, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := load(key)
	if err != nil {
		return v, err
	}
	l.Add(key, v)
	return v, nil
}

// Stats returns the number of hits and misses so far.
func (l *LRU[K, V]) Stats() (hit, miss int64) {
	return l.hit.Load(), l.miss.Load()
}
