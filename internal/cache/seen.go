package cache

import (
	"net/url"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// SeenPages remembers which page URLs were fetched from upstream. Lookups
// can return false positives at the configured rate but never false
// negatives.
type SeenPages struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

func NewSeenPages(expected uint, fpRate float64) *SeenPages {
	if expected == 0 {
		expected = 100_000
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = 0.001
	}
	return &SeenPages{filter: bloom.NewWithEstimates(expected, fpRate)}
}

func (s *SeenPages) Record(pageURL string) {
	key := seenKey(pageURL)
	s.mu.Lock()
	s.filter.AddString(key)
	s.mu.Unlock()
}

func (s *SeenPages) Seen(pageURL string) bool {
	key := seenKey(pageURL)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.TestString(key)
}

// Count is the estimated number of distinct pages recorded.
func (s *SeenPages) Count() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.ApproximatedSize()
}

func (s *SeenPages) Reset() {
	s.mu.Lock()
	s.filter.ClearAll()
	s.mu.Unlock()
}

// seenKey ignores fragments and host case so one page counts once.
func seenKey(pageURL string) string {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return pageURL
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	return u.String()
}
