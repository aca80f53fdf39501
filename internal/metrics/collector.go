package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheStats is the view of the cache the collector needs.
type CacheStats interface {
	Size() int
}

// SeenStats reports how many distinct pages were fetched.
type SeenStats interface {
	Count() uint32
}

// CacheCollector reads cache stats lazily on each scrape.
type CacheCollector struct {
	cache CacheStats
	seen  SeenStats // may be nil

	entries   *prometheus.Desc
	pagesSeen *prometheus.Desc
}

func NewCacheCollector(cache CacheStats, seen SeenStats) *CacheCollector {
	return &CacheCollector{
		cache: cache,
		seen:  seen,
		entries: prometheus.NewDesc(
			namespace+"_cache_entries",
			"Number of live cache entries.",
			nil, nil,
		),
		pagesSeen: prometheus.NewDesc(
			namespace+"_pages_seen",
			"Approximate number of distinct pages fetched from upstream.",
			nil, nil,
		),
	}
}

func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.entries
	ch <- c.pagesSeen
}

func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(c.cache.Size()))
	var seen float64
	if c.seen != nil {
		seen = float64(c.seen.Count())
	}
	ch <- prometheus.MustNewConstMetric(c.pagesSeen, prometheus.GaugeValue, seen)
}
