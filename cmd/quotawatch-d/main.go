package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quotawatch/quotawatch/pkg/adapter"
	"github.com/quotawatch/quotawatch/pkg/adapter/github"
	"github.com/quotawatch/quotawatch/pkg/adapter/openai"
	"github.com/quotawatch/quotawatch/pkg/api"
	"github.com/quotawatch/quotawatch/pkg/config"
	"github.com/quotawatch/quotawatch/pkg/history"
	"github.com/quotawatch/quotawatch/pkg/kv"
	"github.com/quotawatch/quotawatch/pkg/mcp"
	"github.com/quotawatch/quotawatch/pkg/monitor"
	"github.com/quotawatch/quotawatch/pkg/scheduler"
)

func main() {
	fmt.Println(`{"level":"info","msg":"system_started","component":"quotawatch-d"}`)

	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	settings, err := config.Load(cfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, settings)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	hist := history.NewStore(ctx, store, settings.RetentionDays)

	// Platform types are registered explicitly here, before any account is
	// constructed. New platforms get a line in this list, not an import-time
	// side effect.
	factory := adapter.NewFactory()
	factory.RegisterType(github.PlatformType, github.New)
	factory.RegisterType(openai.PlatformType, openai.New)
	factory.RegisterType("mock", adapter.NewMockAdapter)

	records, err := settings.Accounts()
	if err != nil {
		log.Fatalf("Failed to read accounts: %v", err)
	}

	registry := adapter.NewRegistry()
	for _, a := range factory.CreateAdaptersFromConfig(records) {
		registry.Register(a)
	}
	log.Printf("Loaded %d of %d accounts", registry.Len(), len(records))

	board := monitor.NewStatusBoard()
	mon := monitor.New(registry, hist)
	mon.AddListener(board)

	sched := scheduler.New(settings.RefreshInterval)
	sched.Start(ctx, mon.RefreshAll)
	defer sched.Stop()

	// First cycle immediately; the timer covers the rest.
	if err := sched.Trigger(); err != nil {
		log.Printf("Initial refresh failed: %v", err)
	}

	apiServer := api.NewServer(board, hist, sched, settings.AlertThreshold, cfg.Addr)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
			cancel()
		}
	}()

	if cfg.MCP {
		mcpServer := mcp.NewServer(board, mon, sched)
		go func() {
			if err := mcpServer.Serve(); err != nil {
				log.Printf("MCP server error: %v", err)
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.Printf("Shutdown initiated by signal %s", sig)
	case <-ctx.Done():
	}

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Printf("Failed to stop API server: %v", err)
	}

	fmt.Println(`{"level":"info","msg":"shutdown_complete"}`)
}

func openStore(ctx context.Context, settings *config.Settings) (kv.Store, error) {
	switch backend := settings.StoreBackend(); backend {
	case "redis":
		return kv.NewRedisStore(ctx, settings.RedisAddr())
	case "sqlite":
		return kv.NewSQLiteStore(settings.DBPath())
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", backend)
	}
}
