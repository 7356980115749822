// Package main is the entry point for the arbitrage detector service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/solarb/arbitrage-detector/business/arbitrage"
	"github.com/solarb/arbitrage-detector/business/dex"
	"github.com/solarb/arbitrage-detector/business/marketdata"
	"github.com/solarb/arbitrage-detector/business/notify"
	"github.com/solarb/arbitrage-detector/business/quarantine"
	"github.com/solarb/arbitrage-detector/internal/apm"
	"github.com/solarb/arbitrage-detector/internal/config"
	"github.com/solarb/arbitrage-detector/internal/health"
	"github.com/solarb/arbitrage-detector/internal/logger"
	"github.com/solarb/arbitrage-detector/internal/metrics"
	"github.com/solarb/arbitrage-detector/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("ARB_CONFIG_PATH")
	for i, a := range os.Args[1:] {
		if a == "--config" && i+2 <= len(os.Args[1:]) {
			configPath = os.Args[i+2]
		}
		if a == "--version" {
			fmt.Printf("arbd %s (commit: %s, built: %s)\n", version, commit, buildDate)
			os.Exit(0)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := logger.LevelInfo
	switch cfg.App.LogLevel {
	case "debug":
		logLevel = logger.LevelDebug
	case "warn":
		logLevel = logger.LevelWarn
	case "error":
		logLevel = logger.LevelError
	}
	log := logger.New(os.Stderr, logLevel, cfg.App.Name, nil)
	log.Info(ctx, "starting arbitrage detector",
		"version", version,
		"environment", cfg.App.Environment,
	)

	var traceProvider apm.TraceProvider
	if cfg.Telemetry.Enabled {
		if cfg.Telemetry.ServiceName != "" {
			os.Setenv("OTEL_SERVICE_NAME", cfg.Telemetry.ServiceName)
		}
		if cfg.Telemetry.OTLPEndpoint != "" {
			os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)
		}

		traceProvider = apm.NewTraceProvider(log, apm.WithProvider(apm.ZipkinProvider, log),
			apm.WithResourceAttributes(map[string]string{
				"arb.environment": cfg.App.Environment,
				"arb.tokens":      strconv.Itoa(len(cfg.Tokens)),
			}),
		)
		log.Info(ctx, "tracing initialized", "provider", "zipkin", "endpoint", cfg.Telemetry.OTLPEndpoint)

		metrics.NewMetricProvider(
			metrics.WithServiceName(cfg.Telemetry.ServiceName),
			metrics.WithProviderConfig(metrics.ProviderCfg{
				Provider: metrics.PrometheusProvider,
			}),
		)

		port := cfg.Telemetry.PrometheusPort
		if port == 0 {
			port = 9090
		}
		go metrics.ServePrometheusMetrics(metrics.WithPort(strconv.Itoa(port)))
		log.Info(ctx, "prometheus metrics server started", "port", port)
	}
	defer func() {
		if traceProvider != nil {
			traceProvider.Stop()
		}
	}()

	healthServer := health.NewServer(8081, version)
	if err := healthServer.Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else {
		log.Info(ctx, "health server started", "port", 8081)
	}
	defer healthServer.Stop(ctx)

	mono, err := monolith.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	registry := mono.AssetRegistry()
	for _, tok := range cfg.Tokens {
		a, ok := registry.GetByMint(tok.Mint)
		if !ok {
			return fmt.Errorf("token %s: mint %s not found in asset registry", tok.BybitSymbol, tok.Mint)
		}
		if a.Decimals() != tok.Decimals {
			return fmt.Errorf("token %s: config decimals %d does not match registry decimals %d", tok.BybitSymbol, tok.Decimals, a.Decimals())
		}
	}
	log.Info(ctx, "asset registry loaded", "tokens", registry.Count())

	healthServer.RegisterCheck("asset_registry", func(ctx context.Context) (bool, string) {
		n := registry.Count()
		if n == 0 {
			return false, "no tokens loaded"
		}
		return true, fmt.Sprintf("%d tokens loaded", n)
	})

	// notify must come after arbitrage: it overrides arbitrage's default
	// no-op signal sink, and DI token overrides only take effect if they
	// land before the token is first resolved in Startup.
	modules := []monolith.Module{
		&marketdata.Module{},
		&dex.Module{},
		&quarantine.Module{},
		&arbitrage.Module{},
		&notify.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	log.Info(ctx, "all modules started, detecting arbitrage")
	<-ctx.Done()
	log.Info(ctx, "shutting down")

	return nil
}
