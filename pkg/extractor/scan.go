package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anacrolix/torrent/metainfo"

	"github.com/video-analitics/catalog/pkg/classifier"
	"github.com/video-analitics/catalog/pkg/heuristics"
	"github.com/video-analitics/catalog/pkg/logger"
	"github.com/video-analitics/catalog/pkg/models"
)

var socialDomains = []string{
	"facebook.com",
	"twitter.com",
	"x.com",
	"t.me",
	"telegram.me",
	"whatsapp.com",
	"wa.me",
	"pinterest.com",
	"linkedin.com",
	"reddit.com",
	"vk.com",
	"instagram.com",
}

// referenceDomains host metadata pages, never files.
var referenceDomains = []string{
	"imdb.com",
	"themoviedb.org",
	"wikipedia.org",
	"youtube.com",
}

// Scanner runs a set of strategies over one document and merges their
// candidates into a single deduplicated link set.
type Scanner struct {
	base       string
	classifier *classifier.Classifier
	registry   *Registry
}

func NewScanner(base string, c *classifier.Classifier, r *Registry) *Scanner {
	if c == nil {
		c = classifier.New("")
	}
	if r == nil {
		r = DefaultRegistry()
	}
	return &Scanner{base: base, classifier: c, registry: r}
}

// Scan collects links from doc. URLs are unique across both collections
// and the first strategy to find a URL decides its record.
func (s *Scanner) Scan(doc *goquery.Document) models.Links {
	links := models.Links{
		Downloads: []models.LinkRecord{},
		Subtitles: []models.LinkRecord{},
	}
	seen := make(map[string]struct{})

	for _, st := range s.registry.Strategies() {
		for _, c := range st.Candidates(doc) {
			rec, ok := s.accept(c, seen)
			if !ok {
				continue
			}
			if rec.Purpose == models.PurposeSubtitle {
				links.Subtitles = append(links.Subtitles, rec)
			} else {
				links.Downloads = append(links.Downloads, rec)
			}
		}
	}
	return links
}

func (s *Scanner) accept(c Candidate, seen map[string]struct{}) (rec models.LinkRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Debug().
				Str("source", c.Source).
				Str("url", c.URL).
				Str("panic", fmt.Sprint(r)).
				Msg("skipping malformed link candidate")
			ok = false
		}
	}()

	raw := strings.TrimSpace(c.URL)
	if rejected(raw) {
		return rec, false
	}
	abs := heuristics.AbsoluteURL(s.base, raw)
	if abs == "" || hostIn(abs, socialDomains) {
		return rec, false
	}
	if c.Contextual && (s.onSite(abs) || hostIn(abs, referenceDomains)) {
		return rec, false
	}
	if _, dup := seen[abs]; dup {
		return rec, false
	}
	seen[abs] = struct{}{}

	return s.build(abs, c), true
}

func (s *Scanner) build(abs string, c Candidate) models.LinkRecord {
	purpose := heuristics.LinkType(abs, c.Text)
	if heuristics.IsSubtitleText(c.Text) {
		purpose = models.PurposeSubtitle
	}
	analysis := s.classifier.Analyze(abs, c.Text)

	quality := heuristics.Quality(c.Text)
	if quality == heuristics.DefaultQuality && c.Context != "" {
		quality = heuristics.Quality(c.Context)
	}

	rec := models.LinkRecord{
		Name:                linkName(c.Text, abs),
		URL:                 abs,
		Quality:             quality,
		Format:              heuristics.Format(abs, c.Text),
		Size:                heuristics.Size(c.Text, c.Context),
		Purpose:             purpose,
		DeliveryMethod:      analysis.DeliveryMethod,
		Service:             analysis.Service,
		RequiresInteraction: analysis.RequiresInteraction,
		Steps:               analysis.Steps,
	}
	if strings.HasPrefix(strings.ToLower(abs), "magnet:") {
		if m, err := metainfo.ParseMagnetUri(abs); err == nil {
			rec.InfoHash = m.InfoHash.HexString()
			if c.Text == "" && m.DisplayName != "" {
				rec.Name = m.DisplayName
			}
		}
	}
	return rec
}

func rejected(raw string) bool {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return true
	}
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:")
}

func (s *Scanner) onSite(abs string) bool {
	u, err := url.Parse(abs)
	if err != nil {
		return false
	}
	b, err := url.Parse(s.base)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), b.Hostname())
}

func hostIn(abs string, domains []string) bool {
	u, err := url.Parse(abs)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func linkName(text, abs string) string {
	if text != "" {
		return text
	}
	if seg := heuristics.LastPathSegment(abs); seg != "" && !strings.HasPrefix(strings.ToLower(abs), "magnet:") {
		if unescaped, err := url.PathUnescape(seg); err == nil {
			return unescaped
		}
		return seg
	}
	return "Download"
}
