package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"slidesmith/internal/cache"
	"slidesmith/internal/config"
	"slidesmith/internal/generator"
	"slidesmith/internal/httpapi"
	"slidesmith/internal/ledger"
	ledgertb "slidesmith/internal/ledger/tb"
	"slidesmith/internal/store"
	"slidesmith/internal/store/duck"
	storememory "slidesmith/internal/store/memory"
	"slidesmith/pkg/admission"
)

// main launches slidesmithd.
func main() {
	os.Exit(run())
}

// run executes slidesmithd and returns an exit code.
func run() int {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to slidesmithd config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}

	presentations, err := openStore(cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store error: %v\n", err)
		return 1
	}
	defer func() {
		_ = presentations.Close()
	}()

	switcher, generators, err := buildGenerators(cfg.Generator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generator error: %v\n", err)
		return 1
	}

	recorder, closeRecorder, err := buildRecorder(cfg.Ledger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledger error: %v\n", err)
		return 1
	}
	if closeRecorder != nil {
		defer closeRecorder()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	controller := admission.NewController(cfg.Admission.AdmissionConfig())
	controller.StartJanitor(ctx, time.Minute)

	handler := httpapi.NewHandler(httpapi.Config{
		Store:      presentations,
		Generator:  switcher,
		Generators: generators,
		Controller: controller,
		Caches:     buildCaches(cfg.Cache),
		Recorder:   recorder,
		Now:        time.Now,
	})

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
	}

	shutdownTimeout := time.Duration(cfg.Server.ShutdownSeconds) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return 0
}

// openStore selects the presentation store from configuration.
func openStore(cfg config.Storage) (store.Store, error) {
	switch cfg.Driver {
	case "duckdb":
		return duck.Open(cfg.Path)
	default:
		if cfg.Path != "" {
			return storememory.NewPersistent(cfg.Path)
		}
		return storememory.New(), nil
	}
}

// buildGenerators constructs every configured backend and selects the active
// one. The template backend is always registered so the admin switch can
// degrade a misbehaving model backend at runtime.
func buildGenerators(cfg config.Generator) (*generator.Switcher, map[string]generator.Generator, error) {
	template := generator.NewTemplateGenerator()
	generators := map[string]generator.Generator{
		template.Name(): template,
	}

	var active generator.Generator = template
	if cfg.Backend == "openrouter" {
		openRouter, err := generator.NewOpenRouterGenerator(cfg.Model, cfg.APIKey, cfg.BaseURL, nil, cfg.RequestsPerSecond)
		if err != nil {
			return nil, nil, err
		}
		var backend generator.Generator = openRouter
		if cfg.Fallback {
			backend = generator.WithFallback(openRouter, template)
		}
		generators[openRouter.Name()] = backend
		active = backend
	}

	return generator.NewSwitcher(active), generators, nil
}

// buildCaches wires the three cache layers over the configured backing.
func buildCaches(cfg config.Cache) cache.Layers {
	if cfg.Driver == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return cache.Layers{
			Presentations: cache.NewRedis(client, cache.PresentationNamespace, cache.PresentationTTL),
			Slides:        cache.NewRedis(client, cache.SlideNamespace, cache.SlideTTL),
			Responses:     cache.NewRedis(client, cache.ResponseNamespace, cache.ResponseTTL),
		}
	}
	return cache.Layers{
		Presentations: cache.NewMemory(cache.PresentationTTL, cache.PresentationMaxEntries),
		Slides:        cache.NewMemory(cache.SlideTTL, cache.SlideMaxEntries),
		Responses:     cache.NewMemory(cache.ResponseTTL, cache.ResponseMaxEntries),
	}
}

// buildRecorder connects the usage ledger when it is enabled. The recorder is
// wrapped in an async queue so accounting can never slow request handling.
func buildRecorder(cfg config.Ledger) (ledger.Recorder, func(), error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	clusterID, err := parseClusterID(cfg.ClusterID)
	if err != nil {
		return nil, nil, err
	}
	tbRecorder, err := ledgertb.New(ledgertb.Config{
		ClusterID:      clusterID,
		Addresses:      cfg.Addresses,
		Sessions:       cfg.Sessions,
		MaxBatchEvents: cfg.MaxBatchEvents,
		FlushInterval:  cfg.FlushInterval(),
	})
	if err != nil {
		return nil, nil, err
	}
	async := ledger.NewAsync(tbRecorder, cfg.QueueSize)
	return async, func() {
		_ = async.Close()
	}, nil
}

// parseClusterID converts a config cluster_id string to uint32.
func parseClusterID(value string) (uint32, error) {
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid cluster_id: %w", err)
	}
	return uint32(parsed), nil
}
