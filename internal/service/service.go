package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/video-analitics/catalog/internal/cache"
	"github.com/video-analitics/catalog/internal/metrics"
	"github.com/video-analitics/catalog/pkg/extractor"
	"github.com/video-analitics/catalog/pkg/logger"
	"github.com/video-analitics/catalog/pkg/models"
	"github.com/video-analitics/catalog/pkg/status"
)

var idRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Kind selects which extractor a detail operation uses.
type Kind string

const (
	KindMovie    Kind = "movie"
	KindSeries   Kind = "series"
	KindEpisode  Kind = "episode"
	KindEpisodes Kind = "episodes"
)

var kindPaths = map[Kind]string{
	KindMovie:    "movies",
	KindSeries:   "series",
	KindEpisode:  "episodes",
	KindEpisodes: "series",
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// PageCounter reports how many distinct pages were fetched.
type PageCounter interface {
	Count() uint32
}

type Service struct {
	base      *url.URL
	fetcher   Fetcher
	cache     *cache.Store
	extractor *extractor.Extractor
	metrics   *metrics.Metrics
	seen      PageCounter
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPageCounter(c PageCounter) Option {
	return func(s *Service) {
		s.seen = c
	}
}

func New(baseURL string, f Fetcher, store *cache.Store, ex *extractor.Extractor, opts ...Option) (*Service, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	s := &Service{
		base:      base,
		fetcher:   f,
		cache:     store,
		extractor: ex,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Catalog returns listing page n, optionally filtered by media type.
func (s *Service) Catalog(ctx context.Context, page int, mediaType string) (models.CatalogPage, error) {
	filter, err := validateListing(page, mediaType)
	if err != nil {
		return models.CatalogPage{}, err
	}
	pageURL := s.listingURL(page, "")
	key := cache.ResponseKey("catalog", strconv.Itoa(page), string(filter))

	return remember(s, "catalog", key, func() (models.CatalogPage, error) {
		doc, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return models.CatalogPage{}, err
		}
		return s.extractor.Catalog(doc, page, filter), nil
	})
}

// Search runs a site search and extracts the result listing.
func (s *Service) Search(ctx context.Context, query string, page int, mediaType string) (models.CatalogPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.CatalogPage{}, fmt.Errorf("%w: search query is required", status.ErrInvalidInput)
	}
	filter, err := validateListing(page, mediaType)
	if err != nil {
		return models.CatalogPage{}, err
	}
	pageURL := s.listingURL(page, query)
	key := cache.ResponseKey("search", strings.ToLower(query), strconv.Itoa(page), string(filter))

	return remember(s, "search", key, func() (models.CatalogPage, error) {
		doc, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return models.CatalogPage{}, err
		}
		return s.extractor.Catalog(doc, page, filter), nil
	})
}

func (s *Service) Movie(ctx context.Context, ref string) (models.ResourceDetail, error) {
	return s.detail(ctx, KindMovie, ref, s.extractor.Movie)
}

func (s *Service) Series(ctx context.Context, ref string) (models.ResourceDetail, error) {
	return s.detail(ctx, KindSeries, ref, s.extractor.Series)
}

func (s *Service) Episode(ctx context.Context, ref string) (models.ResourceDetail, error) {
	return s.detail(ctx, KindEpisode, ref, s.extractor.Episode)
}

// Episodes returns the episode index of a series or season page.
func (s *Service) Episodes(ctx context.Context, ref string) (models.EpisodeList, error) {
	pageURL, err := s.ResolveURL(KindEpisodes, ref)
	if err != nil {
		return models.EpisodeList{}, err
	}
	key := cache.ResponseKey(string(KindEpisodes), pageURL)

	return remember(s, string(KindEpisodes), key, func() (models.EpisodeList, error) {
		doc, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return models.EpisodeList{}, err
		}
		return s.extractor.EpisodeList(doc, pageURL), nil
	})
}

func (s *Service) detail(ctx context.Context, kind Kind, ref string, extract func(*goquery.Document, string) models.ResourceDetail) (models.ResourceDetail, error) {
	pageURL, err := s.ResolveURL(kind, ref)
	if err != nil {
		return models.ResourceDetail{}, err
	}
	key := cache.ResponseKey(string(kind), pageURL)

	return remember(s, string(kind), key, func() (models.ResourceDetail, error) {
		doc, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return models.ResourceDetail{}, err
		}
		d := extract(doc, pageURL)
		s.metrics.LinksFound(string(models.PurposeDownload), len(d.Downloads))
		s.metrics.LinksFound(string(models.PurposeSubtitle), len(d.Subtitles))
		return d, nil
	})
}

// ClearCache drops every cached page and response.
func (s *Service) ClearCache() int {
	n := s.cache.Clear()
	logger.Log.Info().Int("removed", n).Msg("cache cleared")
	return n
}

func (s *Service) CacheSize() int {
	return s.cache.Size()
}

func (s *Service) PagesSeen() uint32 {
	if s.seen == nil {
		return 0
	}
	return s.seen.Count()
}

// ResolveURL turns a url or site id into an absolute page URL on the
// catalog host. Anything else is rejected before any fetch.
func (s *Service) ResolveURL(kind Kind, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%w: url or id is required", status.ErrInvalidInput)
	}

	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		ref = s.base.Scheme + "://" + s.base.Host + ref
	}
	if strings.Contains(ref, "://") {
		u, err := url.Parse(ref)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return "", fmt.Errorf("%w: malformed url %q", status.ErrInvalidInput, ref)
		}
		if !strings.EqualFold(u.Hostname(), s.base.Hostname()) {
			return "", fmt.Errorf("%w: url %q is not on %s", status.ErrInvalidInput, ref, s.base.Host)
		}
		u.Fragment = ""
		return u.String(), nil
	}

	if !idRegex.MatchString(ref) {
		return "", fmt.Errorf("%w: malformed id %q", status.ErrInvalidInput, ref)
	}
	if _, err := strconv.Atoi(ref); err == nil {
		return s.root() + "/?p=" + ref, nil
	}
	return s.root() + "/" + kindPaths[kind] + "/" + ref + "/", nil
}

func (s *Service) root() string {
	return s.base.Scheme + "://" + s.base.Host + strings.TrimSuffix(s.base.Path, "/")
}

func (s *Service) listingURL(page int, query string) string {
	u := s.root() + "/"
	if page > 1 {
		u += "page/" + strconv.Itoa(page) + "/"
	}
	if query != "" {
		u += "?s=" + url.QueryEscape(query)
	}
	return u
}

func validateListing(page int, mediaType string) (models.MediaType, error) {
	if page < 1 {
		return "", fmt.Errorf("%w: page must be >= 1, got %d", status.ErrInvalidInput, page)
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "" {
		return "", nil
	}
	t, ok := models.ParseMediaType(mediaType)
	if !ok {
		return "", fmt.Errorf("%w: unknown type %q", status.ErrInvalidInput, mediaType)
	}
	return t, nil
}

// remember serves key from the response cache or builds and stores it.
// The cache keeps its own copy so callers may modify what they get back.
// Failed builds are never cached.
func remember[T interface{ Clone() T }](s *Service, op, key string, build func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key); ok {
		if out, ok := v.(T); ok {
			s.metrics.CacheLookup("response", true)
			s.metrics.Operation(op, "cached")
			return out.Clone(), nil
		}
	}
	s.metrics.CacheLookup("response", false)

	out, err := build()
	if err != nil {
		s.metrics.Operation(op, "error")
		var zero T
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	s.cache.Set(key, out.Clone())
	s.metrics.Operation(op, "ok")
	return out, nil
}
