package extractor

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/video-analitics/catalog/pkg/models"
)

var (
	imdbURLRegex = regexp.MustCompile(`imdb\.com/title/(tt\d+)`)
	tmdbURLRegex = regexp.MustCompile(`themoviedb\.org/(?:movie|tv)/(\d+)`)

	imdbIDRegex = regexp.MustCompile(`^tt\d{7,10}$`)
	tmdbIDRegex = regexp.MustCompile(`^\d{1,7}$`)
)

var (
	imdbAttrs = []string{"data-imdb", "data-imdb-id"}
	tmdbAttrs = []string{"data-tmdb", "data-tmdb-id"}
)

// externalIDs looks for IMDb and TMDB ids. Explicit data attributes win
// over ids parsed from outbound links.
func externalIDs(doc *goquery.Document) *models.ExternalIDs {
	var ids models.ExternalIDs

	ids.IMDBID = attrID(doc, imdbAttrs, imdbIDRegex)
	ids.TMDBID = attrID(doc, tmdbAttrs, tmdbIDRegex)

	doc.Find("a[href]").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if ids.IMDBID == "" {
			if m := imdbURLRegex.FindStringSubmatch(href); len(m) > 1 && imdbIDRegex.MatchString(m[1]) {
				ids.IMDBID = m[1]
			}
		}
		if ids.TMDBID == "" {
			if m := tmdbURLRegex.FindStringSubmatch(href); len(m) > 1 && tmdbIDRegex.MatchString(m[1]) {
				ids.TMDBID = m[1]
			}
		}
		return ids.IMDBID == "" || ids.TMDBID == ""
	})

	if ids.IsEmpty() {
		return nil
	}
	return &ids
}

func attrID(doc *goquery.Document, attrs []string, valid *regexp.Regexp) string {
	sel := "[" + attrs[0] + "]"
	for _, a := range attrs[1:] {
		sel += ", [" + a + "]"
	}
	found := ""
	doc.Find(sel).EachWithBreak(func(i int, s *goquery.Selection) bool {
		for _, attr := range attrs {
			if val, ok := s.Attr(attr); ok && valid.MatchString(val) {
				found = val
				return false
			}
		}
		return true
	})
	return found
}
