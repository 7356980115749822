package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solarb/arbitrage-detector/business/marketdata/domain"
	"github.com/solarb/arbitrage-detector/internal/apperror"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/wsconn"
)

// State mirrors the spec's client state machine, re-derived from the
// underlying wsconn state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateRunning      State = "running"
	StateReconnecting State = "reconnecting"
)

const (
	ackTimeout   = 6 * time.Second
	ackAttempts  = 3
	defaultBatch = 8
)

// Config configures one Bybit WS shard.
type Config struct {
	URL               string
	Depth             int
	PingInterval      time.Duration
	BatchSize         int
	MaxSymbolsPerShard int
}

// DefaultConfig returns sensible defaults for one shard.
func DefaultConfig(url string, depth int) Config {
	return Config{
		URL:          url,
		Depth:        depth,
		PingInterval: 20 * time.Second,
		BatchSize:    defaultBatch,
	}
}

// BookSink receives parsed order-book updates for a symbol.
type BookSink func(symbol domain.Symbol, isSnapshot bool, bids, asks []domain.RawLevel, tsMs, ctsMs int64)

// pendingAck tracks an in-flight subscribe/unsubscribe request.
type pendingAck struct {
	resp chan OpResponse
}

// Client is a single Bybit WS connection managing one shard's topic set.
type Client struct {
	name string
	cfg  Config
	log  logger.LoggerInterface
	sink BookSink

	conn *wsconn.Client

	sendMu sync.Mutex

	stateMu sync.RWMutex
	state   State

	desiredMu sync.Mutex
	desired   map[string]struct{}

	subscribedMu sync.Mutex
	subscribed   map[string]struct{}

	pendingMu sync.Mutex
	pending   map[string]*pendingAck

	desiredChanged chan struct{}
	stop           chan struct{}
}

// New creates a new shard client. Call Connect to start it.
func New(name string, cfg Config, log logger.LoggerInterface, sink BookSink) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatch
	}
	return &Client{
		name:           name,
		cfg:            cfg,
		log:            log,
		sink:           sink,
		state:          StateDisconnected,
		desired:        make(map[string]struct{}),
		subscribed:     make(map[string]struct{}),
		pending:        make(map[string]*pendingAck),
		desiredChanged: make(chan struct{}, 1),
		stop:           make(chan struct{}),
	}
}

// Connect dials the WS endpoint and starts the control/ping loops.
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	wsCfg := wsconn.DefaultConfig(c.cfg.URL, c.name)
	// Bybit's public WS already requires an app-level {"op":"ping"} frame
	// (see pingLoop below); the generic transport ping would just be a
	// second, redundant keepalive on top of it.
	wsCfg.DisableTransportPing = true
	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeWSConnectFailed, apperror.WithCause(err))
	}
	conn.OnMessage(c.handleMessage)
	conn.OnStateChange(c.handleStateChange)

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeWSConnectFailed, apperror.WithCause(err))
	}
	c.conn = conn
	c.setState(StateRunning)

	go c.controlLoop(ctx)
	go c.pingLoop(ctx)

	// Re-apply the full desired set on (re)connect.
	c.requestReconcile()
	return nil
}

// SetDesired replaces the shard's desired topic set and wakes the control loop.
func (c *Client) SetDesired(symbols []string) {
	c.desiredMu.Lock()
	next := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		next[Topic(c.cfg.Depth, s)] = struct{}{}
	}
	c.desired = next
	c.desiredMu.Unlock()

	c.requestReconcile()
}

func (c *Client) requestReconcile() {
	select {
	case c.desiredChanged <- struct{}{}:
	default:
	}
}

// Subscribed reports the currently-acked subscription set, for tests/status.
func (c *Client) Subscribed() []string {
	c.subscribedMu.Lock()
	defer c.subscribedMu.Unlock()
	out := make([]string, 0, len(c.subscribed))
	for t := range c.subscribed {
		out = append(out, t)
	}
	return out
}

func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.stateMu.Lock()
	c.state = s
	c.stateMu.Unlock()
}

// controlLoop diffs desired vs subscribed and issues batched subscribe /
// unsubscribe requests whenever the desired set changes.
func (c *Client) controlLoop(ctx context.Context) {
	for {
		select {
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		case <-c.desiredChanged:
			c.reconcile(ctx)
		}
	}
}

func (c *Client) reconcile(ctx context.Context) {
	c.desiredMu.Lock()
	desired := make(map[string]struct{}, len(c.desired))
	for t := range c.desired {
		desired[t] = struct{}{}
	}
	c.desiredMu.Unlock()

	c.subscribedMu.Lock()
	var toSub, toUnsub []string
	for t := range desired {
		if _, ok := c.subscribed[t]; !ok {
			toSub = append(toSub, t)
		}
	}
	for t := range c.subscribed {
		if _, ok := desired[t]; !ok {
			toUnsub = append(toUnsub, t)
		}
	}
	c.subscribedMu.Unlock()

	for _, batch := range batches(toUnsub, c.cfg.BatchSize) {
		c.applyBatch(ctx, "unsubscribe", batch)
	}
	for _, batch := range batches(toSub, c.cfg.BatchSize) {
		c.applyBatch(ctx, "subscribe", batch)
	}
}

func batches(items []string, size int) [][]string {
	var out [][]string
	for len(items) > 0 {
		n := size
		if n > len(items) {
			n = len(items)
		}
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}

// applyBatch sends one subscribe/unsubscribe request and waits for its ack,
// retrying up to ackAttempts times before requesting a reconnect.
func (c *Client) applyBatch(ctx context.Context, op string, topics []string) {
	for attempt := 1; attempt <= ackAttempts; attempt++ {
		reqID := uuid.NewString()
		respCh := make(chan OpResponse, 1)

		c.pendingMu.Lock()
		c.pending[reqID] = &pendingAck{resp: respCh}
		c.pendingMu.Unlock()

		req := OpRequest{Op: op, Args: topics, ReqID: reqID}
		data, _ := json.Marshal(req)

		if err := c.send(ctx, data); err != nil {
			c.log.Warn(ctx, "bybit send failed", "shard", c.name, "op", op, "error", err)
			c.cleanupPending(reqID)
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}

		select {
		case resp := <-respCh:
			c.cleanupPending(reqID)
			if resp.Success {
				c.applyAck(op, topics)
				return
			}
			c.log.Warn(ctx, "bybit negative ack", "shard", c.name, "op", op, "msg", resp.RetMsg)
		case <-time.After(ackTimeout):
			c.cleanupPending(reqID)
			c.log.Warn(ctx, "bybit ack timeout", "shard", c.name, "op", op, "attempt", attempt)
		case <-ctx.Done():
			c.cleanupPending(reqID)
			return
		}

		time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
	}

	c.log.Error(ctx, "bybit control request exhausted retries, reconnecting", "shard", c.name, "op", op)
	c.forceReconnect(ctx)
}

func (c *Client) applyAck(op string, topics []string) {
	c.subscribedMu.Lock()
	defer c.subscribedMu.Unlock()
	for _, t := range topics {
		if op == "subscribe" {
			c.subscribed[t] = struct{}{}
		} else {
			delete(c.subscribed, t)
		}
	}
}

func (c *Client) cleanupPending(reqID string) {
	c.pendingMu.Lock()
	delete(c.pending, reqID)
	c.pendingMu.Unlock()
}

func (c *Client) forceReconnect(ctx context.Context) {
	c.subscribedMu.Lock()
	c.subscribed = make(map[string]struct{})
	c.subscribedMu.Unlock()

	c.pendingMu.Lock()
	for id, p := range c.pending {
		close(p.resp)
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	c.setState(StateReconnecting)
	if c.conn != nil {
		go func() {
			if err := c.conn.ConnectWithRetry(ctx); err != nil {
				c.log.Error(ctx, "bybit reconnect failed", "shard", c.name, "error", err)
				return
			}
			c.setState(StateRunning)
			c.requestReconcile()
		}()
	}
}

func (c *Client) handleStateChange(state wsconn.State, err error) {
	switch state {
	case wsconn.StateReconnecting, wsconn.StateDisconnected:
		c.setState(StateReconnecting)
	case wsconn.StateConnected:
		c.setState(StateRunning)
		c.requestReconcile()
	}
}

func (c *Client) pingLoop(ctx context.Context) {
	if c.cfg.PingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			data, _ := json.Marshal(OpRequest{Op: "ping"})
			if err := c.send(ctx, data); err != nil {
				c.log.Warn(ctx, "bybit ping failed", "shard", c.name, "error", err)
			}
		}
	}
}

func (c *Client) send(ctx context.Context, data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("bybit shard %s: not connected", c.name)
	}
	return c.conn.Send(ctx, data)
}

func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var probe struct {
		Op    string `json:"op"`
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return
	}

	if isAckOp(probe.Op) {
		var resp OpResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return
		}
		c.pendingMu.Lock()
		p, ok := c.pending[resp.ReqID]
		c.pendingMu.Unlock()
		if ok {
			select {
			case p.resp <- resp:
			default:
			}
		}
		return
	}

	if probe.Op == "ping" || probe.Op == "pong" {
		return
	}

	if len(probe.Topic) >= len("orderbook.") && probe.Topic[:len("orderbook.")] == "orderbook." {
		var frame DataFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Warn(ctx, "bybit malformed data frame", "shard", c.name, "error", err)
			return
		}

		symbol := frame.Data.Symbol
		if symbol == "" {
			symbol = SymbolFromTopic(frame.Topic)
		}

		bids := toRawLevels(frame.Data.Bids)
		asks := toRawLevels(frame.Data.Asks)

		if c.sink != nil {
			c.sink(domain.Symbol(symbol), frame.Type == "snapshot", bids, asks, frame.Ts, frame.Cts)
		}
	}
}

func toRawLevels(rows [][2]string) []domain.RawLevel {
	out := make([]domain.RawLevel, len(rows))
	for i, r := range rows {
		out[i] = domain.RawLevel(r)
	}
	return out
}

// Close stops the shard's background loops and underlying connection.
func (c *Client) Close() error {
	close(c.stop)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
