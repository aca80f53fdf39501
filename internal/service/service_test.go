package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/video-analitics/catalog/internal/cache"
	"github.com/video-analitics/catalog/internal/fetcher"
	"github.com/video-analitics/catalog/pkg/classifier"
	"github.com/video-analitics/catalog/pkg/extractor"
	"github.com/video-analitics/catalog/pkg/models"
	"github.com/video-analitics/catalog/pkg/status"
)

const base = "https://catalog.example"

const listingHTML = `<html><body>
<article class="post" data-id="1"><h2><a href="/movies/avatar-2022/">Avatar (2022)</a></h2></article>
<article class="post" data-id="2"><h2><a href="/series/show-name/">Show Name S01E02</a></h2></article>
</body></html>`

const movieHTML = `<html><body><h1>Avatar (2009)</h1>
<div class="content"><a href="https://mediafire.com/x">Download 1080p MKV 1.4GB</a></div>
</body></html>`

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", url, status.ErrUpstreamUnavailable)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func newTestService(t *testing.T, f Fetcher) (*Service, *cache.Store) {
	t.Helper()
	store := cache.New(time.Hour)
	svc, err := New(base, f, store, extractor.New(base, classifier.New("")))
	require.NoError(t, err)
	return svc, store
}

func TestNew_InvalidBase(t *testing.T) {
	_, err := New("not a url", &fakeFetcher{}, cache.New(time.Hour), extractor.New(base, nil))
	assert.Error(t, err)
}

func TestCatalog_TypeFilter(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/": listingHTML}}
	svc, _ := newTestService(t, f)

	page, err := svc.Catalog(context.Background(), 1, "movie")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Avatar (2022)", page.Items[0].Title)
	assert.Equal(t, models.TypeMovie, page.Items[0].Type)
}

func TestCatalog_ResponseIsCached(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/page/2/": listingHTML}}
	svc, _ := newTestService(t, f)

	first, err := svc.Catalog(context.Background(), 2, "")
	require.NoError(t, err)
	second, err := svc.Catalog(context.Background(), 2, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, f.calls, 1)
	assert.Equal(t, 2, first.Page)
}

func TestCatalog_InvalidInputNeverFetches(t *testing.T) {
	f := &fakeFetcher{}
	svc, store := newTestService(t, f)

	_, err := svc.Catalog(context.Background(), 0, "")
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	_, err = svc.Catalog(context.Background(), 1, "anime")
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	_, err = svc.Search(context.Background(), "   ", 1, "")
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	_, err = svc.Movie(context.Background(), "")
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	_, err = svc.Movie(context.Background(), "https://evil.example/movies/x/")
	assert.ErrorIs(t, err, status.ErrInvalidInput)

	assert.Empty(t, f.calls)
	assert.Equal(t, 0, store.Size())
}

func TestSearch(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/?s=avatar+2022": listingHTML}}
	svc, _ := newTestService(t, f)

	page, err := svc.Search(context.Background(), " avatar 2022 ", 1, "series")
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, models.TypeSeries, page.Items[0].Type)
}

func TestMovie_HostedLink(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/movies/avatar/": movieHTML}}
	svc, _ := newTestService(t, f)

	d, err := svc.Movie(context.Background(), "avatar")
	require.NoError(t, err)

	assert.Equal(t, "Avatar", d.Title)
	require.Len(t, d.Downloads, 1)
	l := d.Downloads[0]
	assert.Equal(t, "1080p", l.Quality)
	assert.Equal(t, "MKV", l.Format)
	assert.Equal(t, "1.4 GB", l.Size)
	assert.Equal(t, "mediafire", l.Service)
	assert.Equal(t, models.DeliveryHosted, l.DeliveryMethod)
	assert.True(t, l.RequiresInteraction)
	assert.Len(t, l.Steps, 4)
}

func TestDetail_ByURLAndPath(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/movies/avatar/": movieHTML}}
	svc, _ := newTestService(t, f)

	a, err := svc.Movie(context.Background(), base+"/movies/avatar/#downloads")
	require.NoError(t, err)
	b, err := svc.Movie(context.Background(), "/movies/avatar/")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, f.calls, 1, "both refs resolve to one cache key")
}

func TestMovie_CachedCopyIsIsolated(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/movies/avatar/": movieHTML}}
	svc, _ := newTestService(t, f)

	first, err := svc.Movie(context.Background(), "avatar")
	require.NoError(t, err)
	require.Len(t, first.Downloads, 1)

	first.Meta["Genre"] = "changed"
	first.Downloads[0].Quality = "changed"
	first.Downloads[0].Steps[0] = "changed"
	first.Downloads = append(first.Downloads, models.LinkRecord{URL: "x"})

	second, err := svc.Movie(context.Background(), "avatar")
	require.NoError(t, err)
	assert.Len(t, f.calls, 1)
	assert.NotContains(t, second.Meta, "Genre")
	require.Len(t, second.Downloads, 1)
	assert.Equal(t, "1080p", second.Downloads[0].Quality)
	assert.Equal(t, "Visit link", second.Downloads[0].Steps[0])

	second.Downloads[0].Quality = "again"
	third, err := svc.Movie(context.Background(), "avatar")
	require.NoError(t, err)
	assert.Equal(t, "1080p", third.Downloads[0].Quality)
}

func TestCatalog_CachedCopyIsIsolated(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/": listingHTML}}
	svc, _ := newTestService(t, f)

	first, err := svc.Catalog(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	first.Items[0].Title = "changed"

	second, err := svc.Catalog(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, "Avatar (2022)", second.Items[0].Title)
}

func TestUpstreamFailureIsNotCached(t *testing.T) {
	f := &fakeFetcher{err: fmt.Errorf("fetch: %w", status.ErrUpstreamUnavailable)}
	svc, store := newTestService(t, f)

	_, err := svc.Series(context.Background(), "show-name")
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrUpstreamUnavailable)
	assert.Equal(t, 0, store.Size())
}

type failingTransport struct {
	calls int
}

func (t *failingTransport) Get(ctx context.Context, url string, headers map[string]string) (*fetcher.Response, error) {
	t.calls++
	return nil, errors.New("connection reset by peer")
}

func TestEpisode_RealFetcherRetriesThenFails(t *testing.T) {
	store := cache.New(time.Hour)
	tr := &failingTransport{}
	f := fetcher.New(store, tr, fetcher.WithBackoff(time.Millisecond))
	svc, err := New(base, f, store, extractor.New(base, nil))
	require.NoError(t, err)

	_, err = svc.Episode(context.Background(), "show-s01e02")
	assert.ErrorIs(t, err, status.ErrUpstreamUnavailable)
	assert.Equal(t, 3, tr.calls)

	_, cached := store.Get(cache.PageKey(base + "/episodes/show-s01e02/"))
	assert.False(t, cached)
	assert.Equal(t, 0, store.Size())
}

func TestEpisodes(t *testing.T) {
	html := `<html><body><h1>Show Name</h1><ul class="episodes">
<li><a href="/episodes/show-s01e01/">S01E01</a></li>
<li><a href="/episodes/show-s01e02/">S01E02</a></li></ul></body></html>`
	f := &fakeFetcher{pages: map[string]string{base + "/?p=42": html}}
	svc, _ := newTestService(t, f)

	list, err := svc.Episodes(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, 2, list.Episodes[1].Number)
}

func TestClearCache(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{base + "/": listingHTML}}
	svc, _ := newTestService(t, f)

	_, err := svc.Catalog(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.CacheSize())

	assert.Equal(t, 1, svc.ClearCache())
	assert.Equal(t, 0, svc.CacheSize())
	assert.EqualValues(t, 0, svc.PagesSeen())
}

func TestResolveURL(t *testing.T) {
	svc, _ := newTestService(t, &fakeFetcher{})

	tests := []struct {
		kind    Kind
		ref     string
		want    string
		invalid bool
	}{
		{KindMovie, "avatar-2009", base + "/movies/avatar-2009/", false},
		{KindSeries, "dark", base + "/series/dark/", false},
		{KindEpisode, "dark-s01e01", base + "/episodes/dark-s01e01/", false},
		{KindMovie, "123", base + "/?p=123", false},
		{KindMovie, "/movies/x/", base + "/movies/x/", false},
		{KindMovie, "https://CATALOG.example/movies/x/", "https://CATALOG.example/movies/x/", false},
		{KindMovie, "https://other.example/movies/x/", "", true},
		{KindMovie, "ftp://catalog.example/x", "", true},
		{KindMovie, "//catalog.example/x", "", true},
		{KindMovie, "../etc/passwd", "", true},
		{KindMovie, "a b", "", true},
		{KindMovie, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := svc.ResolveURL(tt.kind, tt.ref)
			if tt.invalid {
				assert.ErrorIs(t, err, status.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
