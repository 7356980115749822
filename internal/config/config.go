// Package config provides configuration loading, validation and live reload.
package config

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Notional   NotionalConfig   `mapstructure:"notional"`
	Fees       FeesConfig       `mapstructure:"fees"`
	Guards     GuardsConfig     `mapstructure:"guards"`
	Signals    SignalsConfig    `mapstructure:"signals"`
	Sanity     SanityConfig     `mapstructure:"sanity"`
	Timing     TimingConfig     `mapstructure:"timing"`
	Stable     StableConfig     `mapstructure:"stable"`
	Tokens     []TokenConfig    `mapstructure:"tokens"`
	Filters    FiltersConfig    `mapstructure:"filters"`
	WS         WSConfig         `mapstructure:"ws"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits"`
	Quarantine QuarantineConfig `mapstructure:"quarantine"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Jupiter    JupiterConfig    `mapstructure:"jupiter"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// NotionalConfig controls the trade size simulated for every quote.
type NotionalConfig struct {
	UsdAmount float64 `mapstructure:"usd_amount"`
}

// FeesConfig holds every fee/cost figure subtracted from gross spread.
type FeesConfig struct {
	BybitTakerFeeBps  float64 `mapstructure:"bybit_taker_fee_bps"`
	SolanaTxFeeUSD    float64 `mapstructure:"solana_tx_fee_usd"`
	LatencyBufferBps  float64 `mapstructure:"latency_buffer_bps"`
	UsdtUsdcBufferBps float64 `mapstructure:"usdt_usdc_buffer_bps"`
	MinProfitUSD      float64 `mapstructure:"min_profit_usd"`
}

// GuardsConfig holds the liquidity/slippage admission guards.
type GuardsConfig struct {
	MaxCexSlippageBps    float64 `mapstructure:"max_cex_slippage_bps"`
	MaxDexPriceImpactPct float64 `mapstructure:"max_dex_price_impact_pct"`
	MinDepthCoveragePct  float64 `mapstructure:"min_depth_coverage_pct"`
}

// SignalsConfig controls signal persistence/dedup behavior.
type SignalsConfig struct {
	PersistenceHits           int     `mapstructure:"persistence_hits"`
	CooldownSec               int     `mapstructure:"cooldown_sec"`
	MinDeltaProfitUsdToResend float64 `mapstructure:"min_delta_profit_usd_to_resend"`
}

// SanityConfig holds global cross-checks on top of the per-branch guards.
type SanityConfig struct {
	PriceRatioMax     float64 `mapstructure:"price_ratio_max"`
	GrossProfitCapPct float64 `mapstructure:"gross_profit_cap_pct"`
	MaxSpreadBps      float64 `mapstructure:"max_spread_bps"`
}

// TimingConfig holds the engine/poller cadence and staleness thresholds.
type TimingConfig struct {
	EngineTickHz           float64 `mapstructure:"engine_tick_hz"`
	JupiterPollIntervalSec float64 `mapstructure:"jupiter_poll_interval_sec"`
	MaxObAgeMs             int     `mapstructure:"max_ob_age_ms"`
	MaxQuoteAgeMs          int     `mapstructure:"max_quote_age_ms"`
}

// StableConfig names the stablecoin every token is priced against.
type StableConfig struct {
	Mint     string `mapstructure:"mint"`
	Decimals uint8  `mapstructure:"decimals"`
}

// TokenConfig names one Solana token tracked for arbitrage, and its Bybit symbol.
type TokenConfig struct {
	BybitSymbol string `mapstructure:"bybit_symbol"`
	Mint        string `mapstructure:"mint"`
	Decimals    uint8  `mapstructure:"decimals"`
}

// FiltersConfig holds the static denylist applied before a token is even tracked.
type FiltersConfig struct {
	DenylistSymbols []string `mapstructure:"denylist_symbols"`
	DenylistRegex   []string `mapstructure:"denylist_regex"`
}

// WSConfig holds the Bybit order-book WebSocket cluster settings.
type WSConfig struct {
	URL             string `mapstructure:"url"`
	Depth           int    `mapstructure:"depth"`
	PingIntervalSec int    `mapstructure:"ping_interval_sec"`
	MaxSymbolsPerWS int    `mapstructure:"max_symbols_per_ws"`
}

// PingInterval returns the configured app-level keepalive cadence.
func (w WSConfig) PingInterval() time.Duration {
	return time.Duration(w.PingIntervalSec) * time.Second
}

// JupiterConfig holds the DEX quote aggregator's endpoint and quote shaping.
type JupiterConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	SlippageBps int    `mapstructure:"slippage_bps"`
	MaxAccounts int    `mapstructure:"max_accounts"`
}

// RateLimitsConfig holds the Jupiter quote client's outbound rate limit.
type RateLimitsConfig struct {
	RPS         float64 `mapstructure:"rps"`
	Concurrency int     `mapstructure:"concurrency"`
	MaxRetries  int     `mapstructure:"max_retries"`
}

// QuarantineConfig holds the quarantine verifier's cadence and TTLs.
type QuarantineConfig struct {
	FilePath             string `mapstructure:"file_path"`
	VerifyIntervalSec    int    `mapstructure:"verify_interval_sec"`
	TTLNotTradableSec    int    `mapstructure:"ttl_not_tradable_sec"`
	TTLNoRouteSec        int    `mapstructure:"ttl_no_route_sec"`
	WSSnapshotTimeoutSec int    `mapstructure:"ws_snapshot_timeout_sec"`
	SyncIntervalSec      int    `mapstructure:"sync_interval_sec"`
}

// VerifyInterval returns the verifier cadence as a time.Duration.
func (q QuarantineConfig) VerifyInterval() time.Duration {
	return time.Duration(q.VerifyIntervalSec) * time.Second
}

// SyncInterval returns the file-watch poll cadence as a time.Duration.
func (q QuarantineConfig) SyncInterval() time.Duration {
	if q.SyncIntervalSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(q.SyncIntervalSec) * time.Second
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// EngineTick returns the configured engine cadence as a time.Duration.
func (t TimingConfig) EngineTick() time.Duration {
	if t.EngineTickHz <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / t.EngineTickHz)
}

// JupiterPollInterval returns the poller cadence as a time.Duration.
func (t TimingConfig) JupiterPollInterval() time.Duration {
	return time.Duration(t.JupiterPollIntervalSec * float64(time.Second))
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setup(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Watch loads configuration and invokes onReload with every successfully
// revalidated Config whenever the backing file changes. onReload is never
// called with an invalid config - a reload that fails validation is passed
// to onError and the previous config stays in effect.
func Watch(configPath string, onReload func(*Config), onError func(error)) (*Config, error) {
	v := viper.New()
	setup(v, configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		var reloaded Config
		if err := v.Unmarshal(&reloaded); err != nil {
			onError(fmt.Errorf("reload: failed to unmarshal config: %w", err))
			return
		}
		if err := reloaded.Validate(); err != nil {
			onError(fmt.Errorf("reload: invalid config, keeping previous: %w", err))
			return
		}
		onReload(&reloaded)
	})
	v.WatchConfig()

	return &cfg, nil
}

func setup(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("app.name", "ARB_APP_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL")

	v.BindEnv("notional.usd_amount", "ARB_NOTIONAL_USD_AMOUNT")

	v.BindEnv("fees.bybit_taker_fee_bps", "ARB_FEES_BYBIT_TAKER_FEE_BPS")
	v.BindEnv("fees.solana_tx_fee_usd", "ARB_FEES_SOLANA_TX_FEE_USD")
	v.BindEnv("fees.min_profit_usd", "ARB_FEES_MIN_PROFIT_USD")

	v.BindEnv("stable.mint", "ARB_STABLE_MINT")
	v.BindEnv("stable.decimals", "ARB_STABLE_DECIMALS")

	v.BindEnv("ws.url", "ARB_WS_URL")
	v.BindEnv("rate_limits.rps", "ARB_RATE_LIMITS_RPS")

	v.BindEnv("jupiter.base_url", "ARB_JUPITER_BASE_URL")
	v.BindEnv("jupiter.api_key", "ARB_JUPITER_API_KEY", "JUPITER_API_KEY")

	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arbitrage-detector")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("notional.usd_amount", 1000.0)

	v.SetDefault("fees.bybit_taker_fee_bps", 10.0)
	v.SetDefault("fees.solana_tx_fee_usd", 0.05)
	v.SetDefault("fees.latency_buffer_bps", 2.0)
	v.SetDefault("fees.usdt_usdc_buffer_bps", 1.0)
	v.SetDefault("fees.min_profit_usd", 1.0)

	v.SetDefault("guards.max_cex_slippage_bps", 15.0)
	v.SetDefault("guards.max_dex_price_impact_pct", 0.5)
	v.SetDefault("guards.min_depth_coverage_pct", 80.0)

	v.SetDefault("signals.persistence_hits", 2)
	v.SetDefault("signals.cooldown_sec", 60)
	v.SetDefault("signals.min_delta_profit_usd_to_resend", 0.5)

	v.SetDefault("sanity.price_ratio_max", 3.0)
	v.SetDefault("sanity.gross_profit_cap_pct", 5.0)
	v.SetDefault("sanity.max_spread_bps", 500.0)

	v.SetDefault("timing.engine_tick_hz", 2.0)
	v.SetDefault("timing.jupiter_poll_interval_sec", 1.0)
	v.SetDefault("timing.max_ob_age_ms", 2000)
	v.SetDefault("timing.max_quote_age_ms", 3000)

	v.SetDefault("stable.mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	v.SetDefault("stable.decimals", 6)

	v.SetDefault("ws.url", "wss://stream.bybit.com/v5/public/spot")
	v.SetDefault("ws.depth", 50)
	v.SetDefault("ws.ping_interval_sec", 20)
	v.SetDefault("ws.max_symbols_per_ws", 190)

	v.SetDefault("rate_limits.rps", 5.0)
	v.SetDefault("rate_limits.concurrency", 8)
	v.SetDefault("rate_limits.max_retries", 3)

	v.SetDefault("jupiter.base_url", "https://lite-api.jup.ag/swap/v1")
	v.SetDefault("jupiter.slippage_bps", 50)
	v.SetDefault("jupiter.max_accounts", 24)

	v.SetDefault("quarantine.file_path", "quarantine.yaml")
	v.SetDefault("quarantine.verify_interval_sec", 1800)
	v.SetDefault("quarantine.ttl_not_tradable_sec", 24*3600)
	v.SetDefault("quarantine.ttl_no_route_sec", 2*3600)
	v.SetDefault("quarantine.ws_snapshot_timeout_sec", 10)
	v.SetDefault("quarantine.sync_interval_sec", 10)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbitrage-detector")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.WS.URL == "" {
		return fmt.Errorf("ws.url is required")
	}
	if c.Stable.Mint == "" {
		return fmt.Errorf("stable.mint is required")
	}
	if len(c.Tokens) == 0 {
		return fmt.Errorf("tokens cannot be empty")
	}
	for _, tok := range c.Tokens {
		if err := tok.validate(); err != nil {
			return err
		}
	}
	if c.RateLimits.RPS <= 0 {
		return fmt.Errorf("rate_limits.rps must be positive")
	}
	if c.Jupiter.BaseURL == "" {
		return fmt.Errorf("jupiter.base_url is required")
	}
	if c.Timing.EngineTickHz <= 0 {
		return fmt.Errorf("timing.engine_tick_hz must be positive")
	}
	return nil
}

func (t TokenConfig) validate() error {
	if t.BybitSymbol == "" {
		return fmt.Errorf("token config: bybit_symbol is required")
	}
	if t.Mint == "" {
		return fmt.Errorf("token config %s: mint is required", t.BybitSymbol)
	}
	if t.Decimals > 18 {
		return fmt.Errorf("token config %s: suspicious decimals (%d)", t.BybitSymbol, t.Decimals)
	}
	return nil
}
