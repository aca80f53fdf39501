package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/video-analitics/catalog/internal/cache"
	"github.com/video-analitics/catalog/internal/config"
	"github.com/video-analitics/catalog/internal/fetcher"
	"github.com/video-analitics/catalog/internal/metrics"
	"github.com/video-analitics/catalog/internal/service"
	"github.com/video-analitics/catalog/pkg/classifier"
	"github.com/video-analitics/catalog/pkg/extractor"
)

type components struct {
	store    *cache.Store
	seen     *cache.SeenPages
	registry *prometheus.Registry
	svc      *service.Service
}

func build(cfg *config.Config, transport fetcher.Transport) (*components, error) {
	store := cache.New(cfg.CacheTTL)
	seen := cache.NewSeenPages(cfg.BloomExpected, cfg.BloomFPRate)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewCacheCollector(store, seen),
	)
	m := metrics.New(reg)

	opts := []fetcher.Option{
		fetcher.WithAttempts(cfg.FetchAttempts),
		fetcher.WithBackoff(cfg.FetchBackoff),
		fetcher.WithMetrics(m),
		fetcher.WithSeen(seen),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, fetcher.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)))
	}
	if transport == nil {
		transport = fetcher.NewRestyTransport(cfg.RequestTimeout, cfg.MaxRedirects)
	}
	f := fetcher.New(store, transport, opts...)

	ex := extractor.New(cfg.BaseURL, classifier.New(cfg.RedirectMarker))
	svc, err := service.New(cfg.BaseURL, f, store, ex,
		service.WithMetrics(m),
		service.WithPageCounter(seen),
	)
	if err != nil {
		return nil, fmt.Errorf("build service: %w", err)
	}

	return &components{
		store:    store,
		seen:     seen,
		registry: reg,
		svc:      svc,
	}, nil
}
