package jupiter

import (
	"math/rand"
	"sync"
	"time"
)

const (
	pruneProbability = 0.02
	maxTableEntries  = 10000
)

type pairKey struct {
	in, out string
}

// NegCache holds the mint-level and pair-level negative caches used to
// short-circuit quote requests the server has already told us will fail.
// TTL extensions only ever move a deadline forward, never shorten it.
type NegCache struct {
	mu    sync.Mutex
	mints map[string]time.Time
	pairs map[pairKey]time.Time
}

// NewNegCache creates an empty negative cache.
func NewNegCache() *NegCache {
	return &NegCache{
		mints: make(map[string]time.Time),
		pairs: make(map[pairKey]time.Time),
	}
}

// BlockMint extends (or sets) the block deadline for a mint.
func (c *NegCache) BlockMint(mint string, ttl time.Duration) {
	deadline := time.Now().Add(ttl)
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.mints[mint]; !ok || deadline.After(existing) {
		c.mints[mint] = deadline
	}
	c.maybePrune()
}

// BlockPair extends (or sets) the block deadline for an (in,out) mint pair.
func (c *NegCache) BlockPair(inMint, outMint string, ttl time.Duration) {
	deadline := time.Now().Add(ttl)
	key := pairKey{inMint, outMint}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.pairs[key]; !ok || deadline.After(existing) {
		c.pairs[key] = deadline
	}
	c.maybePrune()
}

// MintBlocked reports whether mint is currently blocked.
func (c *NegCache) MintBlocked(mint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline, ok := c.mints[mint]
	return ok && time.Now().Before(deadline)
}

// PairBlocked reports whether the (in,out) mint pair is currently blocked.
func (c *NegCache) PairBlocked(inMint, outMint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	deadline, ok := c.pairs[pairKey{inMint, outMint}]
	return ok && time.Now().Before(deadline)
}

// maybePrune probabilistically removes expired entries and caps table size.
// Callers must hold c.mu.
func (c *NegCache) maybePrune() {
	if rand.Float64() >= pruneProbability && len(c.mints) < maxTableEntries && len(c.pairs) < maxTableEntries {
		return
	}
	now := time.Now()
	for m, d := range c.mints {
		if now.After(d) {
			delete(c.mints, m)
		}
	}
	for p, d := range c.pairs {
		if now.After(d) {
			delete(c.pairs, p)
		}
	}
	for m := range c.mints {
		if len(c.mints) <= maxTableEntries {
			break
		}
		delete(c.mints, m)
	}
	for p := range c.pairs {
		if len(c.pairs) <= maxTableEntries {
			break
		}
		delete(c.pairs, p)
	}
}
