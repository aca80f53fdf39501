package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-analitics/catalog/internal/cache"
	"github.com/video-analitics/catalog/internal/fetcher"
	"github.com/video-analitics/catalog/internal/metrics"
	"github.com/video-analitics/catalog/internal/service"
	"github.com/video-analitics/catalog/pkg/classifier"
	"github.com/video-analitics/catalog/pkg/extractor"
)

const base = "https://catalog.example"

const listingHTML = `<html><body>
<article class="post" data-id="1"><h2><a href="/movies/avatar-2022/">Avatar (2022)</a></h2></article>
<article class="post" data-id="2"><h2><a href="/series/show-name/">Show Name S01E02</a></h2></article>
<a rel="next" href="/page/2/">Next</a>
</body></html>`

const movieHTML = `<html><head><meta property="og:title" content="Avatar (2009)"></head><body>
<div class="content"><a href="https://mediafire.com/x">Download 1080p MKV 1.4GB</a></div>
</body></html>`

// siteTransport serves fixed pages and fails for everything else.
type siteTransport struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
}

func (t *siteTransport) Get(ctx context.Context, url string, headers map[string]string) (*fetcher.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[url]++
	if html, ok := t.pages[url]; ok {
		return &fetcher.Response{StatusCode: 200, Body: []byte(html), ContentType: "text/html; charset=utf-8"}, nil
	}
	return nil, errors.New("connection refused")
}

type testEnv struct {
	app       *fiber.App
	store     *cache.Store
	transport *siteTransport
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tr := &siteTransport{
		pages: map[string]string{
			base + "/":               listingHTML,
			base + "/movies/avatar/": movieHTML,
		},
		calls: make(map[string]int),
	}
	store := cache.New(time.Hour)
	seen := cache.NewSeenPages(1000, 0.001)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	reg.MustRegister(metrics.NewCacheCollector(store, seen))

	f := fetcher.New(store, tr,
		fetcher.WithBackoff(time.Millisecond),
		fetcher.WithMetrics(m),
		fetcher.WithSeen(seen),
	)
	svc, err := service.New(base, f, store, extractor.New(base, classifier.New("")),
		service.WithMetrics(m),
		service.WithPageCounter(seen),
	)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	SetupRoutes(app, NewHandler(svc), reg)
	return &testEnv{app: app, store: store, transport: tr}
}

func (e *testEnv) do(t *testing.T, method, target string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := e.app.Test(httptest.NewRequest(method, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(body, &out))
	}
	return resp, out
}

func TestCatalog_MovieFilter(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/catalog?type=movie")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, true, body["hasNext"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "Avatar (2022)", item["title"])
	assert.Equal(t, "movie", item["type"])
}

func TestCatalog_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{
		"/api/catalog?type=anime",
		"/api/catalog?page=abc",
		"/api/catalog?page=-1",
		"/api/search",
		"/api/movie",
		"/api/movie?url=" + url.QueryEscape("https://evil.example/x"),
	} {
		resp, body := env.do(t, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
		assert.Equal(t, false, body["success"], target)
		assert.NotEmpty(t, body["error"], target)
	}
	assert.Empty(t, env.transport.calls)
	assert.Equal(t, 0, env.store.Size())
}

func TestMovie_HostedLink(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/movie?id=avatar")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Avatar", body["title"])
	assert.EqualValues(t, 2009, body["year"])

	downloads := body["downloads"].([]any)
	require.Len(t, downloads, 1)
	l := downloads[0].(map[string]any)
	assert.Equal(t, "1080p", l["quality"])
	assert.Equal(t, "MKV", l["format"])
	assert.Equal(t, "1.4 GB", l["size"])
	assert.Equal(t, "mediafire", l["service"])
	assert.Equal(t, "hosted", l["deliveryMethod"])
	assert.Equal(t, true, l["requiresInteraction"])
	assert.Len(t, l["steps"], 4)
	assert.Empty(t, body["subtitles"])
}

func TestUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/series?url="+url.QueryEscape(base+"/series/gone/"))
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error"])
	assert.NotContains(t, body, "downloads")

	assert.Equal(t, 3, env.transport.calls[base+"/series/gone/"])
	_, cached := env.store.Get(cache.PageKey(base + "/series/gone/"))
	assert.False(t, cached)
	assert.Equal(t, 0, env.store.Size())
}

func TestCacheClearAndHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/catalog")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, health := env.do(t, http.MethodGet, "/health")
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 2, health["cache_entries"], "page body and built response")
	assert.EqualValues(t, 1, health["pages_seen"])

	resp, body := env.do(t, http.MethodDelete, "/api/cache")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["removed"])

	_, body = env.do(t, http.MethodPost, "/api/cache")
	assert.EqualValues(t, 0, body["removed"])

	_, health = env.do(t, http.MethodGet, "/health")
	assert.EqualValues(t, 0, health["cache_entries"])
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/health")
	_, err := uuid.Parse(resp.Header.Get(requestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, id)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get(requestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/catalog")

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "catalog_fetch_attempts_total")
	assert.Contains(t, string(body), "catalog_cache_entries")
}
