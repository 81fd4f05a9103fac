package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gitcoinco/grant-claims/internal/api"
	"github.com/gitcoinco/grant-claims/internal/app"
	"github.com/gitcoinco/grant-claims/internal/config"
	"github.com/gitcoinco/grant-claims/internal/features"
	"github.com/gitcoinco/grant-claims/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	variant := flag.String("whitelabel", "", "override whitelabel variant: OPTIMISM|ZK_SYNC|SUNNY|BASE")
	flag.Parse()

	cfg, err := config.LoadFile(*cfgPath)
	if err != nil {
		log.Printf("warning: config file: %v, using defaults", err)
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if *variant != "" {
		cfg.Whitelabel = *variant
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	feats, err := features.Resolve(cfg.Whitelabel)
	if err != nil {
		log.Fatalf("whitelabel: %v", err)
	}
	log.Printf("grant-claims starting (variant=%s env=%s addr=%s chains=%v)",
		feats.Variant, cfg.Environment, cfg.API.Addr, feats.ChainIDs)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}

	a, err := app.New(cfg, feats)
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	apiServer := api.NewServer(cfg.API.Addr, a, cfg.API.RequestTimeout)
	if err := apiServer.Start(ctx); err != nil {
		log.Fatalf("api server: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Run(gctx) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("run error: %v", err)
	}
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("api server shutdown: %v", err)
	}
	a.Shutdown(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("telemetry shutdown: %v", err)
	}
}
