package bybit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/solarb/arbitrage-detector/business/marketdata/domain"
	"github.com/solarb/arbitrage-detector/internal/logger"
)

// Cluster shards a desired symbol set across N shard clients, each bounded
// by MaxSymbolsPerShard. Shards are never torn down on shrink; instead their
// desired set is emptied.
type Cluster struct {
	cfg Config
	log logger.LoggerInterface
	sink BookSink

	mu      sync.Mutex
	shards  []*Client
	applied []string // last applied desired symbol list, for atomic-latest-wins semantics
	version int64
}

// NewCluster creates an empty cluster. Shards are created lazily as needed.
func NewCluster(cfg Config, log logger.LoggerInterface, sink BookSink) *Cluster {
	if cfg.MaxSymbolsPerShard <= 0 {
		cfg.MaxSymbolsPerShard = 50
	}
	return &Cluster{cfg: cfg, log: log, sink: sink}
}

// SetDesired reshards the full symbol set across shards, growing the shard
// pool as needed and connecting any newly created shard. Safe for concurrent
// callers: the latest call wins.
func (cl *Cluster) SetDesired(ctx context.Context, symbols []domain.Symbol) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.version++
	myVersion := cl.version

	sorted := make([]string, 0, len(symbols))
	for _, s := range symbols {
		sorted = append(sorted, string(s))
	}
	sort.Strings(sorted)

	needed := ceilDiv(len(sorted), cl.cfg.MaxSymbolsPerShard)
	for len(cl.shards) < needed {
		idx := len(cl.shards)
		c := New(fmt.Sprintf("bybit-shard-%d", idx), cl.cfg, cl.log, cl.sink)
		cl.shards = append(cl.shards, c)
		go func() {
			if err := c.Connect(ctx); err != nil {
				cl.log.Error(ctx, "bybit shard connect failed", "shard", idx, "error", err)
			}
		}()
	}

	if myVersion != cl.version {
		return // a newer call superseded this one while we were growing shards
	}

	for i, shard := range cl.shards {
		start := i * cl.cfg.MaxSymbolsPerShard
		if start >= len(sorted) {
			shard.SetDesired(nil)
			continue
		}
		end := start + cl.cfg.MaxSymbolsPerShard
		if end > len(sorted) {
			end = len(sorted)
		}
		shard.SetDesired(sorted[start:end])
	}

	cl.applied = sorted
}

func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// State reports each shard's connection state, for status reporting.
func (cl *Cluster) State() map[string]State {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make(map[string]State, len(cl.shards))
	for i, s := range cl.shards {
		out[fmt.Sprintf("shard-%d", i)] = s.State()
	}
	return out
}

// Close shuts down every shard.
func (cl *Cluster) Close() error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	var firstErr error
	for _, s := range cl.shards {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
