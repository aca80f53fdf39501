package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/video-analitics/catalog/pkg/heuristics"
	"github.com/video-analitics/catalog/pkg/models"
)

const maxMetaValueLength = 200

var (
	shortlinkIDRegex = regexp.MustCompile(`[?&]p=(\d+)`)

	metaListSelectors = ".meta li, .info li, .details li, .movie-info li, .specs li"
	metaRowSelectors  = ".meta tr, .info tr, .details tr, table.info tr"

	descriptionSelectors = []string{".description", ".summary", ".plot", ".story", ".synopsis", ".entry-content p"}
)

// Movie extracts a movie detail page.
func (e *Extractor) Movie(doc *goquery.Document, pageURL string) models.ResourceDetail {
	return e.detail(doc, pageURL)
}

// Series extracts a series detail page including its season and episode
// navigation.
func (e *Extractor) Series(doc *goquery.Document, pageURL string) models.ResourceDetail {
	d := e.detail(doc, pageURL)
	d.Seasons = e.seasons(doc)
	d.Episodes = e.episodes(doc)
	return d
}

// Episode extracts a single episode page.
func (e *Extractor) Episode(doc *goquery.Document, pageURL string) models.ResourceDetail {
	d := e.detail(doc, pageURL)
	d.Season, d.Episode = seasonEpisode(rawTitle(doc))
	return d
}

func (e *Extractor) detail(doc *goquery.Document, pageURL string) models.ResourceDetail {
	title, year := parseTitle(rawTitle(doc))
	meta := extractMeta(doc)
	if year == 0 {
		year = findYear(meta["Year"] + " " + meta["Release"])
	}

	links := e.scanner.Scan(doc)

	return models.ResourceDetail{
		ID:          detailID(doc, pageURL),
		Title:       title,
		URL:         pageURL,
		Image:       e.detailImage(doc),
		Description: description(doc),
		Year:        year,
		Quality:     heuristics.Quality(meta["Quality"] + " " + title),
		Meta:        meta,
		ExternalIDs: externalIDs(doc),
		Downloads:   links.Downloads,
		Subtitles:   links.Subtitles,
	}
}

// rawTitle prefers og:title, then the first heading, then <title>.
func rawTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && cleanText(og) != "" {
		return og
	}
	if h1 := cleanText(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return doc.Find("title").First().Text()
}

func (e *Extractor) detailImage(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return heuristics.AbsoluteURL(e.base, og)
	}
	return e.image(doc.Find(".poster, .cover, .thumbnail, article").First())
}

func description(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && cleanText(desc) != "" {
		return cleanText(desc)
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && cleanText(desc) != "" {
		return cleanText(desc)
	}
	for _, sel := range descriptionSelectors {
		if text := cleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractMeta collects "Label: value" pairs from info lists, tables and
// definition lists. The first occurrence of a label wins.
func extractMeta(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	put := func(label, value string) {
		label = strings.TrimSuffix(cleanText(label), ":")
		value = truncate(cleanText(value), maxMetaValueLength)
		if label == "" || value == "" {
			return
		}
		if _, exists := meta[label]; !exists {
			meta[label] = value
		}
	}

	doc.Find(metaListSelectors).Each(func(i int, li *goquery.Selection) {
		if label := li.Find("strong, b, .label").First(); label.Length() > 0 {
			l := cleanText(label.Text())
			v := strings.TrimSpace(strings.TrimPrefix(cleanText(li.Text()), l))
			put(l, strings.TrimPrefix(v, ":"))
			return
		}
		if l, v, ok := strings.Cut(cleanText(li.Text()), ":"); ok {
			put(l, v)
		}
	})

	doc.Find(metaRowSelectors).Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("th, td")
		if cells.Length() >= 2 {
			put(cells.Eq(0).Text(), cells.Eq(1).Text())
		}
	})

	doc.Find("dl").Each(func(i int, dl *goquery.Selection) {
		dl.Find("dt").Each(func(i int, dt *goquery.Selection) {
			put(dt.Text(), dt.NextFiltered("dd").Text())
		})
	})

	return meta
}

func detailID(doc *goquery.Document, pageURL string) string {
	for _, sel := range []string{"[data-post-id]", "article[data-id]", "[data-id]"} {
		el := doc.Find(sel).First()
		for _, attr := range []string{"data-post-id", "data-id"} {
			if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	if href, ok := doc.Find(`link[rel="shortlink"]`).Attr("href"); ok {
		if m := shortlinkIDRegex.FindStringSubmatch(href); len(m) > 1 {
			return m[1]
		}
	}
	if id, ok := doc.Find("article[id]").First().Attr("id"); ok {
		if m := postIDRegex.FindStringSubmatch(id); len(m) > 1 {
			return m[1]
		}
	}
	return heuristics.LastPathSegment(pageURL)
}
