package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/solarb/arbitrage-detector/business/quarantine/domain"
	"github.com/solarb/arbitrage-detector/internal/logger"
)

// writeGuardInterval is the minimum spacing between file writes for the same
// symbol, a defense against a noisy caller hammering Add in a tight loop.
const writeGuardInterval = 15 * time.Second

// recentWriteSkipWindow: a still-fresh existing entry (more than this much
// time left) is accepted in memory without touching the file again.
const recentWriteSkipWindow = 30 * time.Minute

// badTokenCfgTTL is how long a structurally invalid token config stays
// quarantined before it is reconsidered (it never auto-recovers via the
// verifier, only via a restart after the config is fixed).
const badTokenCfgTTL = 24 * time.Hour

// Store is the durable backing for the quarantine set.
type Store interface {
	Load() map[string]domain.Entry
	Save(map[string]domain.Entry) error
	ModTime() time.Time
}

// Manager owns the in-memory quarantined set, derived from (and kept in
// sync with) a durable file-backed store. All state mutations funnel
// through a single mutex; file reads/writes funnel through a second mutex
// so Add and the sync loop never interleave a read-modify-write.
type Manager struct {
	store Store
	log   logger.LoggerInterface

	tokens         []TokenInfo
	baseDenylist   []string
	onChanged      OnSymbolsChanged

	stateMu    sync.RWMutex
	quarantine map[string]domain.Entry

	fileMu     sync.Mutex
	lastWriteMu sync.Mutex
	lastWrite  map[string]time.Time
}

// NewManager builds a Manager over store, validating none of tokens yet.
// Call LoadInitial before use.
func NewManager(store Store, log logger.LoggerInterface, tokens []TokenInfo, baseDenylist []string, onChanged OnSymbolsChanged) *Manager {
	return &Manager{
		store:        store,
		log:          log,
		tokens:       tokens,
		baseDenylist: baseDenylist,
		onChanged:    onChanged,
		quarantine:   make(map[string]domain.Entry),
		lastWrite:    make(map[string]time.Time),
	}
}

// SetOnChanged (re)binds the notification callback. Useful when the
// callback itself needs a reference to services (e.g. the WS cluster) that
// are only available after every module has finished registering.
func (m *Manager) SetOnChanged(onChanged OnSymbolsChanged) {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	m.onChanged = onChanged
}

// ConfiguredSymbols returns every symbol this manager was given at
// construction, regardless of quarantine status.
func (m *Manager) ConfiguredSymbols() []string {
	out := make([]string, 0, len(m.tokens))
	for _, t := range m.tokens {
		out = append(out, t.Symbol)
	}
	return out
}

// LoadInitial loads the quarantine file, prunes expired entries, quarantines
// any structurally invalid token configs under BAD_TOKEN_CFG, and persists
// if anything was added.
func (m *Manager) LoadInitial(ctx context.Context) {
	now := time.Now()

	m.fileMu.Lock()
	q := pruneExpired(m.store.Load(), now)

	added := false
	for _, t := range m.tokens {
		if t.valid() {
			continue
		}
		if t.Symbol == "" {
			continue
		}
		if _, exists := q[t.Symbol]; exists {
			continue
		}
		q[t.Symbol] = domain.Entry{Reason: domain.ReasonBadTokenCfg, UntilTS: now.Add(badTokenCfgTTL).Unix()}
		added = true
		if m.log != nil {
			m.log.Warn(ctx, "quarantine: BAD_TOKEN_CFG", "symbol", t.Symbol, "mint", t.Mint, "decimals", t.Decimals)
		}
	}
	if added {
		if err := m.store.Save(q); err != nil && m.log != nil {
			m.log.Error(ctx, "quarantine: failed to persist BAD_TOKEN_CFG entries", "error", err)
		}
	}
	m.fileMu.Unlock()

	m.stateMu.Lock()
	m.quarantine = q
	m.stateMu.Unlock()

	if m.log != nil {
		if len(q) > 0 {
			m.log.Warn(ctx, "quarantine enabled", "count", len(q))
		} else {
			m.log.Info(ctx, "quarantine empty")
		}
	}
}

// Add quarantines symbol for ttl, subject to a per-symbol anti-spam write
// guard and a durable, prior-deadline-preserving merge with the file.
func (m *Manager) Add(ctx context.Context, symbol string, reason domain.Reason, ttl time.Duration) {
	if symbol == "" {
		return
	}

	now := time.Now()

	m.lastWriteMu.Lock()
	if last, ok := m.lastWrite[symbol]; ok && now.Sub(last) < writeGuardInterval {
		m.lastWriteMu.Unlock()
		return
	}
	m.lastWrite[symbol] = now
	m.lastWriteMu.Unlock()

	until := now.Add(ttl)

	m.fileMu.Lock()
	q := pruneExpired(m.store.Load(), now)

	if prev, ok := q[symbol]; ok && time.Unix(prev.UntilTS, 0).After(now.Add(recentWriteSkipWindow)) {
		// Existing deadline already comfortably covers us; skip the write,
		// just make sure it's reflected in memory.
		m.fileMu.Unlock()
		m.mergeIntoState(symbol, prev)
		return
	}

	entry := domain.Entry{Reason: reason, UntilTS: until.Unix()}
	q[symbol] = entry
	err := m.store.Save(q)
	m.fileMu.Unlock()

	if err != nil {
		if m.log != nil {
			m.log.Error(ctx, "quarantine: failed to persist entry", "symbol", symbol, "error", err)
		}
		return
	}

	m.mergeIntoState(symbol, entry)

	if m.log != nil {
		m.log.Warn(ctx, "auto-quarantine", "symbol", symbol, "reason", reason, "ttl", ttl)
	}
}

func (m *Manager) mergeIntoState(symbol string, entry domain.Entry) {
	m.stateMu.Lock()
	_, existed := m.quarantine[symbol]
	m.quarantine[symbol] = entry
	cb := m.onChanged
	m.stateMu.Unlock()

	if !existed && cb != nil {
		cb()
	}
}

// Contains reports whether symbol is currently quarantined.
func (m *Manager) Contains(symbol string) bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	_, ok := m.quarantine[symbol]
	return ok
}

// ActiveSymbols filters all out of the quarantined set.
func (m *Manager) ActiveSymbols(all []string) []string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	out := make([]string, 0, len(all))
	for _, s := range all {
		if _, quarantined := m.quarantine[s]; !quarantined {
			out = append(out, s)
		}
	}
	return out
}

// Denylist returns the sorted union of the static base denylist and the
// currently quarantined symbols.
func (m *Manager) Denylist() []string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	set := make(map[string]struct{}, len(m.baseDenylist)+len(m.quarantine))
	for _, s := range m.baseDenylist {
		set[s] = struct{}{}
	}
	for s := range m.quarantine {
		set[s] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a copy of the current quarantine set, for the verifier.
func (m *Manager) Snapshot() map[string]domain.Entry {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	out := make(map[string]domain.Entry, len(m.quarantine))
	for k, v := range m.quarantine {
		out[k] = v
	}
	return out
}

// RemoveRecovered drops symbols from both the in-memory set and the file,
// then notifies onChanged if anything actually changed.
func (m *Manager) RemoveRecovered(ctx context.Context, symbols []string) {
	if len(symbols) == 0 {
		return
	}

	m.fileMu.Lock()
	q := m.store.Load()
	changed := false
	for _, s := range symbols {
		if _, ok := q[s]; ok {
			delete(q, s)
			changed = true
		}
	}
	if changed {
		if err := m.store.Save(q); err != nil && m.log != nil {
			m.log.Error(ctx, "quarantine: failed to persist recovery", "error", err)
		}
	}
	m.fileMu.Unlock()

	m.stateMu.Lock()
	for _, s := range symbols {
		delete(m.quarantine, s)
	}
	cb := m.onChanged
	m.stateMu.Unlock()

	if changed && cb != nil {
		cb()
	}
}

// SyncLoop watches the backing file's mtime and reloads on change, so an
// externally-edited quarantine file (or another process instance) is picked
// up without a restart. Runs until ctx is done.
func (m *Manager) SyncLoop(ctx context.Context, pollInterval time.Duration) {
	var lastMtime time.Time
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mtime := m.store.ModTime()
			if !mtime.After(lastMtime) {
				continue
			}
			lastMtime = mtime
			m.reload(ctx)
		}
	}
}

func (m *Manager) reload(ctx context.Context) {
	now := time.Now()

	m.fileMu.Lock()
	raw := m.store.Load()
	pruned := pruneExpired(raw, now)
	if len(pruned) != len(raw) {
		if err := m.store.Save(pruned); err != nil && m.log != nil {
			m.log.Error(ctx, "quarantine: failed to persist pruned file", "error", err)
		}
	}
	m.fileMu.Unlock()

	m.stateMu.Lock()
	before := m.quarantine
	added, removed := diff(before, pruned)
	m.quarantine = pruned
	cb := m.onChanged
	m.stateMu.Unlock()

	if len(added) > 0 || len(removed) > 0 {
		if m.log != nil {
			m.log.Warn(ctx, "quarantine sync", "added", len(added), "removed", len(removed), "active", len(pruned))
		}
		if cb != nil {
			cb()
		}
	}
}

func pruneExpired(entries map[string]domain.Entry, now time.Time) map[string]domain.Entry {
	out := make(map[string]domain.Entry, len(entries))
	for sym, e := range entries {
		if !e.Expired(now) {
			out[sym] = e
		}
	}
	return out
}

func diff(before, after map[string]domain.Entry) (added, removed []string) {
	for sym := range after {
		if _, ok := before[sym]; !ok {
			added = append(added, sym)
		}
	}
	for sym := range before {
		if _, ok := after[sym]; !ok {
			removed = append(removed, sym)
		}
	}
	return added, removed
}
