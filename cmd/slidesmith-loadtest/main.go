// Command slidesmith-loadtest runs a synthetic load test against the
// presentation service's admission layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"slidesmith/pkg/deck"
	"slidesmith/pkg/deckclient"
)

// config captures command-line configuration for the load test.
type config struct {
	BaseURL        string
	Duration       time.Duration
	Concurrency    int
	Identities     int
	RatePerWorker  float64
	SlideCount     int
	Topic          string
	RequestTimeout time.Duration
	ReadShare      float64
}

// loadtestStats aggregates counters and latency samples.
type loadtestStats struct {
	requestCount uint64
	allowedCount uint64
	quotaDenied  uint64
	capacityBusy uint64
	errorCount   uint64
	createdCount uint64

	mu        sync.Mutex
	latencies []int64
}

func main() {
	cfg := parseConfig()
	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	stats := runLoad(ctx, cfg)
	printSummary(cfg, stats)
}

// parseConfig reads flags and builds a config.
func parseConfig() config {
	var cfg config
	flag.StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "slidesmithd base URL")
	flag.DurationVar(&cfg.Duration, "duration", 30*time.Second, "test duration")
	flag.IntVar(&cfg.Concurrency, "concurrency", 50, "concurrent workers")
	flag.IntVar(&cfg.Identities, "identities", 10, "distinct API keys to spread requests across")
	flag.Float64Var(&cfg.RatePerWorker, "rate", 5, "request pacing per worker in requests/sec (0 disables)")
	flag.IntVar(&cfg.SlideCount, "slides", 3, "slides per created presentation")
	flag.StringVar(&cfg.Topic, "topic", "load test deck", "topic for created presentations")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", 5*time.Second, "per-request timeout")
	flag.Float64Var(&cfg.ReadShare, "read-share", 0.5, "fraction of requests that list instead of create")
	flag.Parse()
	return cfg
}

// validate ensures the configuration is usable.
func (c config) validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.Identities <= 0 {
		return fmt.Errorf("identities must be positive")
	}
	if c.SlideCount < 1 || c.SlideCount > deck.MaxSlides {
		return fmt.Errorf("slides must be between 1 and %d", deck.MaxSlides)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request-timeout must be positive")
	}
	if c.ReadShare < 0 || c.ReadShare > 1 {
		return fmt.Errorf("read-share must be between 0 and 1")
	}
	return nil
}

// runLoad executes the concurrent load until the context expires. Each worker
// carries one identity's API key so per-identity pools fill realistically.
func runLoad(ctx context.Context, cfg config) *loadtestStats {
	stats := &loadtestStats{
		latencies: make([]int64, 0, cfg.Concurrency*16),
	}
	clients := make([]*deckclient.Client, cfg.Identities)
	for i := range clients {
		client := deckclient.NewWithTimeout(cfg.BaseURL, cfg.RequestTimeout)
		client.SetAPIKey(fmt.Sprintf("loadtest-key-%03d", i))
		clients[i] = client
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			var pacer *rate.Limiter
			if cfg.RatePerWorker > 0 {
				pacer = rate.NewLimiter(rate.Limit(cfg.RatePerWorker), 1)
			}
			client := clients[int(seed)%len(clients)]
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if pacer != nil {
					if err := pacer.Wait(ctx); err != nil {
						return
					}
				}

				start := time.Now()
				err := oneRequest(ctx, client, cfg, rng, stats)
				stats.recordLatency(time.Since(start))
				atomic.AddUint64(&stats.requestCount, 1)
				switch {
				case err == nil:
					atomic.AddUint64(&stats.allowedCount, 1)
				case deckclient.IsRateLimited(err):
					atomic.AddUint64(&stats.quotaDenied, 1)
				case deckclient.IsBusy(err):
					atomic.AddUint64(&stats.capacityBusy, 1)
				case ctx.Err() != nil:
					return
				default:
					atomic.AddUint64(&stats.errorCount, 1)
				}
			}
		}(int64(i + 1))
	}
	wg.Wait()
	return stats
}

// oneRequest issues a single protected operation against the server.
func oneRequest(ctx context.Context, client *deckclient.Client, cfg config, rng *rand.Rand, stats *loadtestStats) error {
	if rng.Float64() < cfg.ReadShare {
		_, err := client.List(ctx, 10, 0)
		return err
	}
	topic := fmt.Sprintf("%s #%d", cfg.Topic, rng.Intn(1_000_000))
	_, err := client.Create(ctx, deck.CreateRequest{
		Topic:     topic,
		NumSlides: cfg.SlideCount,
	})
	if err == nil {
		atomic.AddUint64(&stats.createdCount, 1)
	}
	return err
}

// printSummary renders load test metrics to stdout.
func printSummary(cfg config, stats *loadtestStats) {
	elapsed := cfg.Duration.Seconds()
	requests := atomic.LoadUint64(&stats.requestCount)
	allowed := atomic.LoadUint64(&stats.allowedCount)
	quota := atomic.LoadUint64(&stats.quotaDenied)
	busy := atomic.LoadUint64(&stats.capacityBusy)
	errors := atomic.LoadUint64(&stats.errorCount)
	created := atomic.LoadUint64(&stats.createdCount)

	fmt.Println("slidesmith load test summary")
	fmt.Printf("base-url: %s duration: %s concurrency: %d identities: %d\n",
		cfg.BaseURL, cfg.Duration, cfg.Concurrency, cfg.Identities)
	fmt.Printf("requests/sec: %.2f\n", float64(requests)/elapsed)
	fmt.Printf("allowed: %d rate-limited: %d busy: %d errors: %d created: %d\n",
		allowed, quota, busy, errors, created)
	fmt.Printf("latency p50=%s p95=%s p99=%s\n",
		stats.percentile(0.50),
		stats.percentile(0.95),
		stats.percentile(0.99),
	)
	if requests > 0 {
		fmt.Printf("denial share: %.1f%%\n", float64(quota+busy)/float64(requests)*100)
	}
}

// recordLatency appends a latency sample.
func (s *loadtestStats) recordLatency(d time.Duration) {
	s.mu.Lock()
	s.latencies = append(s.latencies, d.Nanoseconds())
	s.mu.Unlock()
}

// percentile computes a duration percentile over the recorded samples.
func (s *loadtestStats) percentile(p float64) time.Duration {
	s.mu.Lock()
	samples := append([]int64(nil), s.latencies...)
	s.mu.Unlock()
	if len(samples) == 0 {
		return 0
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	if p <= 0 {
		return time.Duration(samples[0])
	}
	if p >= 1 {
		return time.Duration(samples[len(samples)-1])
	}
	pos := int(float64(len(samples)-1) * p)
	return time.Duration(samples[pos])
}
