// Package sigcache provides a bounded result cache for batch verification:
// when the same (epoch, digest, signature) tuple against the same public
// key is checked more than once in a batch, the second check is served
// from cache instead of re-running the chain/tree arithmetic. It never
// changes single-signature Verify semantics — it only memoizes it.
package sigcache

import (
	"container/list"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/zeebo/blake3"

	"github.com/koalaxmss/hashsig/encoding/hypercube"
	"github.com/koalaxmss/hashsig/internal/bitutil"
	"github.com/koalaxmss/hashsig/wire"
	"github.com/koalaxmss/hashsig/xmss"
)

// Item is one (epoch, digest, signature) tuple to check against a shared
// public key during a batch verification pass.
type Item struct {
	Epoch  uint64
	Digest hypercube.Digest
	Sig    *xmss.Signature
}

type entry struct {
	fingerprint [32]byte
	ok          bool
	elem        *list.Element
}

// Cache is a fixed-capacity LRU keyed by a blake3 fingerprint of each
// verification's full input, so a 64-bit bucket collision can never
// return a stale result for a different tuple.
type Cache struct {
	mu       sync.Mutex
	capacity int
	index    map[uint64]*entry
	order    *list.List // front = most recently used; holds the xxhash keys
}

// New returns an empty cache holding up to capacity distinct results.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		index:    make(map[uint64]*entry, capacity),
		order:    list.New(),
	}
}

func fingerprint(rootBytes []byte, it Item, sigBytes []byte) [32]byte {
	var epochBytes [8]byte
	epochBytes[0] = byte(it.Epoch)
	epochBytes[1] = byte(it.Epoch >> 8)
	epochBytes[2] = byte(it.Epoch >> 16)
	epochBytes[3] = byte(it.Epoch >> 24)
	epochBytes[4] = byte(it.Epoch >> 32)
	epochBytes[5] = byte(it.Epoch >> 40)
	epochBytes[6] = byte(it.Epoch >> 48)
	epochBytes[7] = byte(it.Epoch >> 56)

	// Fold the epoch into the leading digest bytes before hashing, so the
	// fingerprint depends on epoch even though Digest and epoch are hashed
	// as one combined block below.
	folded := make([]byte, len(it.Digest))
	copy(folded, it.Digest[:])
	bitutil.XORBytes(folded[:8], folded[:8], epochBytes[:])

	h := blake3.New()
	h.Write(rootBytes)
	h.Write(folded)
	h.Write(sigBytes)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func cacheKey(fp [32]byte) uint64 {
	return xxhash.Sum64(fp[:])
}

// Lookup reports a previously cached verification result for it against
// pk, if one exists. The bool ok reports whether a cache entry was found
// at all — it is distinct from the cached verification result itself.
func (c *Cache) Lookup(pk *xmss.PublicKey, it Item) (result bool, ok bool) {
	rootBytes, err := wire.MarshalPublicKey(pk)
	if err != nil {
		return false, false
	}
	sigBytes, err := wire.MarshalSignature(it.Sig)
	if err != nil {
		return false, false
	}
	fp := fingerprint(rootBytes, it, sigBytes)
	key := cacheKey(fp)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.index[key]
	if !found || e.fingerprint != fp {
		return false, false
	}
	c.order.MoveToFront(e.elem)
	return e.ok, true
}

// Store records the verification result for it against pk, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *Cache) Store(pk *xmss.PublicKey, it Item, result bool) {
	rootBytes, err := wire.MarshalPublicKey(pk)
	if err != nil {
		return
	}
	sigBytes, err := wire.MarshalSignature(it.Sig)
	if err != nil {
		return
	}
	fp := fingerprint(rootBytes, it, sigBytes)
	key := cacheKey(fp)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, found := c.index[key]; found {
		e.fingerprint = fp
		e.ok = result
		c.order.MoveToFront(e.elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			oldKey := oldest.Value.(uint64)
			delete(c.index, oldKey)
			c.order.Remove(oldest)
		}
	}

	elem := c.order.PushFront(key)
	c.index[key] = &entry{fingerprint: fp, ok: result, elem: elem}
}

// BatchVerify checks every item against pk, consulting and populating
// cache to skip duplicate work. Results are returned in the same order
// as items.
func BatchVerify(pk *xmss.PublicKey, items []Item, cache *Cache) []bool {
	results := make([]bool, len(items))
	for i, it := range items {
		if cached, found := cache.Lookup(pk, it); found {
			results[i] = cached
			continue
		}
		ok := xmss.Verify(pk, it.Epoch, it.Digest, it.Sig)
		cache.Store(pk, it, ok)
		results[i] = ok
	}
	return results
}
