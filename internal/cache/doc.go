// Package cache provides a generic, thread-safe LRU cache with a soft
// size limit.
//
//	c := cache.New[string, int](100)
//	c.Set("key", 42)
//	value, ok := c.Get("key")
//
// The resultcache package shards several of these together to spread
// lock contention across concurrent producers; this package itself stays
// single-shard and is the unit that fan-out is built from.
//
// # Thread Safety
//
// Cache is safe for concurrent use. It should not be copied after
// creation (it contains a mutex).
package cache
