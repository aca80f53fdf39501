package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/video-analitics/catalog/internal/cache"
	"github.com/video-analitics/catalog/internal/metrics"
	"github.com/video-analitics/catalog/pkg/logger"
	"github.com/video-analitics/catalog/pkg/status"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
)

// Fetcher returns parsed documents for page URLs. Bodies of successful
// fetches are cached; failures never are.
type Fetcher struct {
	cache     *cache.Store
	transport Transport
	headers   map[string]string
	attempts  int
	backoff   time.Duration
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
	seen      *cache.SeenPages
	group     singleflight.Group
}

type Option func(*Fetcher)

func WithAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.attempts = n
		}
	}
}

// WithBackoff sets the base delay; the wait after attempt n is n*d.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.backoff = d
		}
	}
}

func WithLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

func WithSeen(b *cache.SeenPages) Option {
	return func(f *Fetcher) {
		f.seen = b
	}
}

func WithHeaders(h map[string]string) Option {
	return func(f *Fetcher) {
		for k, v := range h {
			f.headers[k] = v
		}
	}
}

func New(store *cache.Store, t Transport, opts ...Option) *Fetcher {
	f := &Fetcher{
		cache:     store,
		transport: t,
		headers:   BrowserHeaders(),
		attempts:  DefaultAttempts,
		backoff:   DefaultBackoff,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the document for url, from cache when possible.
// When every attempt fails the error wraps status.ErrUpstreamUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	key := cache.PageKey(url)

	if v, ok := f.cache.Get(key); ok {
		if body, ok := v.([]byte); ok {
			f.metrics.CacheLookup("page", true)
			logger.Log.Debug().Str("url", url).Msg("page cache hit")
			return parse(body)
		}
	}
	f.metrics.CacheLookup("page", false)

	v, err, shared := f.group.Do(key, func() (any, error) {
		body, err := f.fetchWithRetry(ctx, url)
		if err != nil {
			return nil, err
		}
		f.cache.Set(key, body)
		if f.seen != nil {
			f.seen.Record(url)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Log.Debug().Str("url", url).Msg("joined in-flight fetch")
	}
	return parse(v.([]byte))
}

// Seen reports whether url was probably fetched before.
func (f *Fetcher) Seen(url string) bool {
	return f.seen != nil && f.seen.Seen(url)
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, url string) ([]byte, error) {
	var (
		body    []byte
		lastErr error
	)

	err := retry.Do(
		func() error {
			if f.limiter != nil {
				if err := f.limiter.Wait(ctx); err != nil {
					return retry.Unrecoverable(err)
				}
			}
			b, err := f.attempt(ctx, url)
			if err != nil {
				lastErr = err
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.attempts)),
		// retry-go passes n=1 before the second attempt, so waits grow
		// as 1x, 2x, ... the backoff.
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return time.Duration(n) * f.backoff
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Log.Warn().
				Err(err).
				Str("url", url).
				Uint("attempt", n+1).
				Int("max_attempts", f.attempts).
				Msg("fetch attempt failed")
		}),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		logger.Log.Error().Err(lastErr).Str("url", url).Int("attempts", f.attempts).Msg("upstream unavailable")
		return nil, fmt.Errorf("fetch %s: %w: %w", url, status.ErrUpstreamUnavailable, lastErr)
	}
	return body, nil
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	body, err := f.get(ctx, url)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var be *BlockedError
		if errors.As(err, &be) {
			outcome = "blocked"
		}
	}
	f.metrics.FetchAttempt(outcome, time.Since(start))
	return body, err
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.transport.Get(ctx, url, f.headers)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: url, StatusCode: resp.StatusCode}
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("GET %s: empty body: %w", url, status.ErrNotDocument)
	}
	if !isText(resp.Body) {
		return nil, fmt.Errorf("GET %s: %w (%s)", url, status.ErrNotDocument, mimetype.Detect(resp.Body).String())
	}

	body, err := decode(resp.Body, resp.ContentType)
	if err != nil {
		return nil, fmt.Errorf("GET %s: decode body: %w", url, err)
	}
	if br := DetectBlocking(string(body)); br.Blocked {
		return nil, &BlockedError{URL: url, Reason: br.Reason}
	}
	return body, nil
}

func isText(body []byte) bool {
	for mt := mimetype.Detect(body); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

// decode converts body to UTF-8 using the declared or sniffed charset.
func decode(body []byte, contentType string) ([]byte, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

func parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}
