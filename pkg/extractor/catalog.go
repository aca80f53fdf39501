package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/video-analitics/catalog/pkg/heuristics"
	"github.com/video-analitics/catalog/pkg/models"
)

const itemSelectors = "article, .post, .item, .movie-item, .film, .card"

var (
	postIDRegex = regexp.MustCompile(`(?:post|item|movie)-(\d+)`)

	seriesWords = []string{"season", "episode", "series", "فصل", "قسمت", "سریال"}

	seriesBadges = []string{"series", "serial", "tv show", "tv", "سریال"}
	movieBadges  = []string{"movie", "film", "فیلم"}
)

// Catalog extracts listing items from doc. A non-empty filter keeps only
// items of that type.
func (e *Extractor) Catalog(doc *goquery.Document, page int, filter models.MediaType) models.CatalogPage {
	if page < 1 {
		page = 1
	}
	result := models.CatalogPage{
		Page:  page,
		Items: []models.CatalogItem{},
	}

	seen := make(map[string]struct{})
	doc.Find(itemSelectors).Each(func(i int, block *goquery.Selection) {
		item, ok := e.catalogItem(block)
		if !ok {
			return
		}
		if _, dup := seen[item.URL]; dup {
			return
		}
		seen[item.URL] = struct{}{}

		if filter != "" && item.Type != filter {
			return
		}
		result.Items = append(result.Items, item)
	})

	result.Count = len(result.Items)
	result.NextPage = e.nextPage(doc)
	result.HasNext = result.NextPage != ""
	return result
}

func (e *Extractor) catalogItem(block *goquery.Selection) (item models.CatalogItem, ok bool) {
	link := block.Find("h1 a[href], h2 a[href], h3 a[href], .title a[href]").First()
	if link.Length() == 0 {
		link = block.Find("a[href]").First()
	}
	if link.Length() == 0 {
		if goquery.NodeName(block) != "a" {
			return item, false
		}
		link = block
	}

	href, _ := link.Attr("href")
	if rejected(strings.TrimSpace(href)) {
		return item, false
	}
	item.URL = heuristics.AbsoluteURL(e.base, href)
	if item.URL == "" {
		return item, false
	}

	title := cleanText(block.Find("h1, h2, h3, .title").First().Text())
	if title == "" {
		title = cleanText(link.Text())
	}
	if title == "" {
		title, _ = link.Attr("title")
		title = cleanText(title)
	}
	if title == "" {
		return item, false
	}

	item.Title = title
	_, item.Year = parseTitle(title)
	item.Quality = heuristics.Quality(cleanText(block.Find(".quality, .badge-quality").First().Text()) + " " + title)
	item.Image = e.image(block)
	item.ID = itemID(block, item.URL)
	item.Type = inferType(title, badgeText(block))
	return item, true
}

func (e *Extractor) image(s *goquery.Selection) string {
	img := s.Find("img").First()
	for _, attr := range []string{"data-src", "data-lazy-src", "src"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" && !strings.HasPrefix(v, "data:") {
			return heuristics.AbsoluteURL(e.base, v)
		}
	}
	return ""
}

func (e *Extractor) nextPage(doc *goquery.Document) string {
	next := doc.Find(`a[rel="next"], a.next, .pagination a.next, .nav-links a.next, .next a`).First()
	href, ok := next.Attr("href")
	if !ok || rejected(strings.TrimSpace(href)) {
		return ""
	}
	return heuristics.AbsoluteURL(e.base, href)
}

func itemID(block *goquery.Selection, itemURL string) string {
	for _, attr := range []string{"data-id", "data-post-id", "data-post"} {
		if v, ok := block.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if id, ok := block.Attr("id"); ok {
		if m := postIDRegex.FindStringSubmatch(id); len(m) > 1 {
			return m[1]
		}
	}
	return heuristics.LastPathSegment(itemURL)
}

func badgeText(block *goquery.Selection) string {
	var parts []string
	block.Find(".badge, .type, .label, .category").Each(func(i int, s *goquery.Selection) {
		if t := cleanText(s.Text()); t != "" {
			parts = append(parts, strings.ToLower(t))
		}
	})
	return strings.Join(parts, " ")
}

// inferType decides between movie and series. An explicit badge wins
// over title words.
func inferType(title, badges string) models.MediaType {
	if badges != "" {
		for _, b := range seriesBadges {
			if hasWord(badges, b) {
				return models.TypeSeries
			}
		}
		for _, b := range movieBadges {
			if hasWord(badges, b) {
				return models.TypeMovie
			}
		}
	}

	if seasonEpisodeRegex.MatchString(title) {
		return models.TypeSeries
	}
	lower := strings.ToLower(title)
	for _, w := range seriesWords {
		if hasWord(lower, w) {
			return models.TypeSeries
		}
	}
	return models.TypeMovie
}

func hasWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '|' || r == '/' || r == '-' || r == '(' || r == ')' || r == ':'
	}) {
		if f == word {
			return true
		}
	}
	return strings.Contains(word, " ") && strings.Contains(s, word)
}
