package resultcache

import (
	"hash/fnv"
	"sync/atomic"

	"github.com/gogpu/screensink"
	"github.com/gogpu/screensink/internal/cache"
)

// ShardCount is the number of independent shards a Cache fans its keys
// across, matching the fan-out the original cache/sharded.go used to
// cut lock contention under concurrent producers.
const ShardCount = 16

const shardMask = ShardCount - 1

// Hasher computes a shard-selection hash for a key.
type Hasher[K comparable] func(K) uint64

// Cache is a generic, sharded memoization cache. Each shard is an
// independent *cache.Cache, reusing its per-shard LRU-with-soft-limit
// eviction; Cache itself only adds shard fan-out and hit/miss counters on
// top, the same split of responsibilities the original sharded cache
// kept between its own bookkeeping and its per-shard lruList.
type Cache[K comparable, V any] struct {
	shards [ShardCount]*cache.Cache[K, V]
	hasher Hasher[K]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a Cache with the given per-shard soft limit (0 means
// unlimited) and shard-selection hasher.
func New[K comparable, V any](perShardLimit int, hasher Hasher[K]) *Cache[K, V] {
	c := &Cache[K, V]{hasher: hasher}
	for i := range c.shards {
		c.shards[i] = cache.New[K, V](perShardLimit)
	}
	return c
}

func (c *Cache[K, V]) shardFor(key K) *cache.Cache[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get retrieves a cached value.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.shardFor(key).Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores a value, evicting within its shard if the shard's soft
// limit is exceeded.
func (c *Cache[K, V]) Set(key K, value V) {
	c.shardFor(key).Set(key, value)
}

// GetOrCreate returns the cached value for key, or calls create and
// caches its result. create runs under the owning shard's lock, so two
// concurrent requests for the same key never compute it twice.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	shard := c.shardFor(key)
	if v, ok := shard.Get(key); ok {
		c.hits.Add(1)
		return v
	}
	c.misses.Add(1)
	return shard.GetOrCreate(key, create)
}

// Len returns the total number of entries across all shards.
func (c *Cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

// Clear empties every shard and resets hit/miss counters.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns aggregate statistics across all shards.
func (c *Cache[K, V]) Stats() cache.Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return cache.Stats{
		Len:      c.Len(),
		Capacity: c.shards[0].Capacity(),
		Hits:     hits,
		Misses:   misses,
		HitRate:  hitRate,
	}
}

// areaKey is the memoization key for a producer result: the requested
// area plus a caller-supplied generation number, so Wrap's caller can
// invalidate every cached result (e.g. the source image changed) just by
// bumping a counter rather than walking the cache.
type areaKey struct {
	area       screensink.Rect
	generation uint64
}

func hashAreaKey(k areaKey) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 40)
	putInt(buf[0:8], k.area.Left)
	putInt(buf[8:16], k.area.Top)
	putInt(buf[16:24], k.area.Width)
	putInt(buf[24:32], k.area.Height)
	putInt(buf[32:40], int(k.generation))
	_, _ = h.Write(buf)
	return h.Sum64()
}

func putInt(b []byte, v int) {
	u := uint64(v)
	for i := range b {
		b[i] = byte(u)
		u >>= 8
	}
}

// producerResult is the cached payload: a copy of the computed pixels,
// independent of whatever PixelBuffer the original compute call used.
type producerResult struct {
	pix    []byte
	stride int
}

// producerCache wraps a screensink.Producer, memoizing Compute by area
// and generation.
type producerCache struct {
	inner      screensink.Producer
	cache      *Cache[areaKey, producerResult]
	generation atomic.Uint64
}

// Wrap returns a Producer that memoizes inner's Compute results keyed by
// requested area, with a soft limit of maxEntries cached results shared
// across every Render that uses it. Pass a non-nil invalidate to receive
// a function that bumps the cache's generation, discarding future hits
// against everything computed so far without clearing the underlying
// storage immediately (old-generation entries simply age out under the
// per-shard soft limit).
func Wrap(inner screensink.Producer, maxEntries int, invalidate *func()) screensink.Producer {
	perShard := maxEntries / ShardCount
	if maxEntries > 0 && perShard < 1 {
		perShard = 1
	}
	pc := &producerCache{
		inner: inner,
		cache: New[areaKey, producerResult](perShard, hashAreaKey),
	}
	if invalidate != nil {
		*invalidate = func() { pc.generation.Add(1) }
	}
	return pc
}

func (pc *producerCache) Describe() screensink.Descriptor {
	return pc.inner.Describe()
}

func (pc *producerCache) Compute(buf *screensink.PixelBuffer, area screensink.Rect) error {
	key := areaKey{area: area, generation: pc.generation.Load()}

	if cached, ok := pc.cache.Get(key); ok {
		copy(buf.Pix(), cached.pix)
		return nil
	}

	if err := pc.inner.Compute(buf, area); err != nil {
		return err
	}

	pix := append([]byte(nil), buf.Pix()...)
	pc.cache.Set(key, producerResult{pix: pix, stride: buf.Stride()})
	return nil
}
