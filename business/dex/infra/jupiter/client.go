// Package jupiter implements the DEX quote client against Jupiter's
// exact-in swap quote API.
package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	dexapp "github.com/solarb/arbitrage-detector/business/dex/app"
	"github.com/solarb/arbitrage-detector/business/dex/domain"
	"github.com/solarb/arbitrage-detector/internal/circuitbreaker"
	"github.com/solarb/arbitrage-detector/internal/httpclient"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/ratelimit"
)

// Config configures the Jupiter quote client.
type Config struct {
	BaseURL         string
	APIKey          string
	SlippageBps     int
	MaxAccounts     int
	RPS             float64
	Concurrency     int
	MaxRetries      int
	TTLNotTradable  time.Duration
	TTLNoRoute      time.Duration
	TTLAmountTooBig time.Duration
	LogThrottle     time.Duration
}

// DefaultConfig returns sensible defaults for the Jupiter quote API.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:         baseURL,
		APIKey:          apiKey,
		SlippageBps:     50,
		MaxAccounts:     24,
		RPS:             5,
		Concurrency:     8,
		MaxRetries:      3,
		TTLNotTradable:  6 * time.Hour,
		TTLNoRoute:      5 * time.Minute,
		TTLAmountTooBig: 90 * time.Second,
		LogThrottle:     30 * time.Second,
	}
}

// quoteResponse is the successful /quote JSON body.
type quoteResponse struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
	ContextSlot    int64  `json:"contextSlot"`
	TimeTaken      float64 `json:"timeTaken"`
}

// Client is the rate-limited, negative-cached Jupiter quote client.
type Client struct {
	cfg  Config
	http httpclient.Client
	log  logger.LoggerInterface

	limiter *ratelimit.Limiter
	sem     chan struct{}
	neg     *NegCache
	breaker *circuitbreaker.CircuitBreaker[*httpclient.Response]

	skipSink dexapp.SkipSink

	throttleMu sync.Mutex
	throttled  map[string]time.Time
}

// New creates a new Jupiter quote client.
func New(cfg Config, log logger.LoggerInterface, skipSink dexapp.SkipSink) (*Client, error) {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	httpClient, err := httpclient.NewInstrumentedClient(
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithProviderName("jupiter"),
		httpclient.WithRequestTimeout(10*time.Second),
		// Keep the transport's per-host pool at least as large as the
		// quoter's own concurrency semaphore, or quotes queue on the pool
		// instead of the semaphore and the configured concurrency is a lie.
		httpclient.WithMaxConnsPerHost(concurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("jupiter: init http client: %w", err)
	}

	return &Client{
		cfg:       cfg,
		http:      httpClient,
		log:       log,
		limiter:   ratelimit.NewWithBurst(cfg.RPS, concurrency),
		sem:       make(chan struct{}, concurrency),
		neg:       NewNegCache(),
		breaker:   circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("jupiter-quote")),
		skipSink:  skipSink,
		throttled: make(map[string]time.Time),
	}, nil
}

// Quote fetches an exact-in quote for amountRaw units of inputMint, returning
// (nil, nil) when the request is negative-cached, classified as a permanent
// failure, or otherwise not retryable.
func (c *Client) Quote(ctx context.Context, inputMint, outputMint string, amountRaw decimal.Decimal) (*domain.Quote, error) {
	if c.neg.MintBlocked(inputMint) || c.neg.MintBlocked(outputMint) || c.neg.PairBlocked(inputMint, outputMint) {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	backoff := func(attempt int) time.Duration {
		d := 250*time.Millisecond*time.Duration(1<<uint(attempt)) + time.Duration(rand.Float64()*0.2*float64(time.Second))
		if d > 6*time.Second {
			d = 6 * time.Second
		}
		return d
	}

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		req := c.http.NewRequest().
			SetQueryParams(map[string]string{
				"inputMint":                  inputMint,
				"outputMint":                 outputMint,
				"amount":                     amountRaw.String(),
				"swapMode":                   "ExactIn",
				"slippageBps":                strconv.Itoa(c.cfg.SlippageBps),
				"restrictIntermediateTokens": "true",
				"maxAccounts":                strconv.Itoa(c.cfg.MaxAccounts),
				"instructionVersion":         "V1",
			}).
			SetHeader("x-api-key", c.cfg.APIKey)

		resp, err := c.breaker.Execute(func() (*httpclient.Response, error) {
			r, err := req.Get(ctx, "/quote")
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, fmt.Errorf("jupiter: status %d", r.StatusCode)
			}
			return r, nil
		})
		if err != nil && resp == nil {
			if attempt == c.cfg.MaxRetries {
				return nil, err
			}
			c.sleep(ctx, backoff(attempt))
			continue
		}

		switch {
		case resp.StatusCode == 200:
			return c.parseSuccess(resp.Body(), outputMint)

		case resp.StatusCode == 429 || resp.StatusCode >= 500:
			if attempt == c.cfg.MaxRetries {
				c.throttledWarn(ctx, "jupiter-retryable-exhausted", "jupiter retries exhausted", "status", resp.StatusCode)
				return nil, fmt.Errorf("jupiter: status %d after %d attempts", resp.StatusCode, attempt+1)
			}
			wait := backoff(attempt)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil && time.Duration(secs)*time.Second > wait {
					wait = time.Duration(secs) * time.Second
				}
			}
			c.throttledWarn(ctx, "jupiter-retryable", "jupiter retryable error", "status", resp.StatusCode)
			c.sleep(ctx, wait)
			continue

		case resp.StatusCode == 400:
			return c.handleClassified(ctx, resp.Body(), inputMint, outputMint)

		default:
			c.throttledWarn(ctx, "jupiter-other-4xx", "jupiter non-retryable error", "status", resp.StatusCode)
			return nil, nil
		}
	}

	return nil, nil
}

func (c *Client) parseSuccess(body []byte, outputMint string) (*domain.Quote, error) {
	var qr quoteResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, fmt.Errorf("jupiter: decode quote: %w", err)
	}

	inAmt, _ := decimal.NewFromString(qr.InAmount)
	outAmt, _ := decimal.NewFromString(qr.OutAmount)
	impact, _ := decimal.NewFromString(qr.PriceImpactPct)

	return &domain.Quote{
		InputMint:      qr.InputMint,
		OutputMint:     qr.OutputMint,
		InAmountRaw:    inAmt,
		OutAmountRaw:   outAmt,
		PriceImpactPct: impact,
		ContextSlot:    qr.ContextSlot,
		TimeTakenMs:    qr.TimeTaken * 1000,
		FetchedAt:      time.Now(),
	}, nil
}

func (c *Client) handleClassified(ctx context.Context, body []byte, inputMint, outputMint string) (*domain.Quote, error) {
	var eb ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		c.throttledWarn(ctx, "jupiter-400-unparseable", "jupiter 400 with unparseable body")
		return nil, nil
	}

	cls, ok := classify(eb, outputMint)
	if !ok {
		c.throttledWarn(ctx, "jupiter-400-other:"+eb.ErrorCode, "jupiter other 400", "code", eb.ErrorCode, "msg", eb.Error)
		return nil, nil
	}

	switch cls.pairTTL {
	case "not_tradable":
		c.neg.BlockMint(cls.badMint, c.cfg.TTLNotTradable)
		c.neg.BlockPair(inputMint, outputMint, time.Minute)
	case "no_route":
		c.neg.BlockPair(inputMint, outputMint, c.cfg.TTLNoRoute)
	case "amount_too_big":
		c.neg.BlockPair(inputMint, outputMint, c.cfg.TTLAmountTooBig)
	}

	if cls.emitSkip && c.skipSink != nil {
		c.skipSink(dexapp.SkipEvent{
			Code:       cls.skipCode,
			InputMint:  inputMint,
			OutputMint: outputMint,
			BadMint:    cls.badMint,
			Msg:        eb.Error,
		})
	}

	return nil, nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// throttledWarn logs at most once per c.cfg.LogThrottle for a given key.
func (c *Client) throttledWarn(ctx context.Context, key, msg string, args ...any) {
	c.throttleMu.Lock()
	last, seen := c.throttled[key]
	now := time.Now()
	if seen && now.Sub(last) < c.cfg.LogThrottle {
		c.throttleMu.Unlock()
		return
	}
	c.throttled[key] = now
	c.throttleMu.Unlock()

	c.log.Warn(ctx, msg, args...)
}
