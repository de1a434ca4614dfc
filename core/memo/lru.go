// core/memo/lru.go: bounded, concurrency-safe memo cache
package memo

import (
	"container/list"
	"hash/maphash"
	"sync"
)

const shards = 16

// Cache is a size-bounded LRU map split into independently locked shards so
// overlapping requests only contend on keys that hash together.
// A nil *Cache is valid and caches nothing.
type Cache[K comparable, V any] struct {
	seed  maphash.Seed
	parts [shards]shard[K, V]
}

type shard[K comparable, V any] struct {
	mu  sync.Mutex
	cap int
	ll  *list.List
	m   map[K]*list.Element
}

type entry[K comparable, V any] struct {
	k K
	v V
}

// New returns a cache holding at most capacity entries (≥ shards).
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 100_000
	}
	per := capacity / shards
	if per < 1 {
		per = 1
	}
	c := &Cache[K, V]{seed: maphash.MakeSeed()}
	for i := range c.parts {
		c.parts[i] = shard[K, V]{cap: per, ll: list.New(), m: make(map[K]*list.Element)}
	}
	return c
}

func (c *Cache[K, V]) shardFor(k K) *shard[K, V] {
	return &c.parts[maphash.Comparable(c.seed, k)%shards]
}

// Get returns the cached value for k.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.m[k]; ok {
		s.ll.MoveToFront(e)
		return e.Value.(*entry[K, V]).v, true
	}
	return zero, false
}

// Put stores v under k, evicting the least recently used entry of the shard.
func (c *Cache[K, V]) Put(k K, v V) {
	if c == nil {
		return
	}
	s := c.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.m[k]; ok {
		e.Value.(*entry[K, V]).v = v
		s.ll.MoveToFront(e)
		return
	}
	s.m[k] = s.ll.PushFront(&entry[K, V]{k: k, v: v})
	if s.ll.Len() > s.cap {
		if tail := s.ll.Back(); tail != nil {
			s.ll.Remove(tail)
			delete(s.m, tail.Value.(*entry[K, V]).k)
		}
	}
}

// DeleteFunc drops every entry whose key satisfies drop.
func (c *Cache[K, V]) DeleteFunc(drop func(K) bool) int {
	if c == nil {
		return 0
	}
	n := 0
	for i := range c.parts {
		s := &c.parts[i]
		s.mu.Lock()
		for k, e := range s.m {
			if drop(k) {
				s.ll.Remove(e)
				delete(s.m, k)
				n++
			}
		}
		s.mu.Unlock()
	}
	return n
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for i := range c.parts {
		c.parts[i].mu.Lock()
		n += c.parts[i].ll.Len()
		c.parts[i].mu.Unlock()
	}
	return n
}
