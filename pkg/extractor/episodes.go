package extractor

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/video-analitics/catalog/pkg/heuristics"
	"github.com/video-analitics/catalog/pkg/models"
)

const (
	seasonSelectors  = ".seasons a, .season-list a, .seasons-list a, a[data-season]"
	episodeSelectors = ".episodes a, .episode-list a, .episodes-list a, li.episode a, a.episode, a[data-episode]"
)

// EpisodeList extracts the episode index of a series or season page.
func (e *Extractor) EpisodeList(doc *goquery.Document, pageURL string) models.EpisodeList {
	title, _ := parseTitle(rawTitle(doc))
	episodes := e.episodes(doc)
	return models.EpisodeList{
		URL:      pageURL,
		Title:    title,
		Count:    len(episodes),
		Episodes: episodes,
	}
}

func (e *Extractor) seasons(doc *goquery.Document) []models.SeasonSummary {
	out := []models.SeasonSummary{}
	seen := make(map[string]struct{})
	doc.Find(seasonSelectors).Each(func(i int, s *goquery.Selection) {
		label := anchorText(s)
		u := e.navURL(s)
		key := u
		if key == "" {
			key = "label:" + label
		}
		if label == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		number := attrNumber(s, "data-season")
		if number == 0 {
			number, _ = seasonEpisode(label)
		}
		out = append(out, models.SeasonSummary{
			Label:  label,
			Title:  titleAttr(s, label),
			URL:    u,
			ID:     navID(s, u),
			Number: number,
		})
	})
	return out
}

func (e *Extractor) episodes(doc *goquery.Document) []models.EpisodeSummary {
	out := []models.EpisodeSummary{}
	seen := make(map[string]struct{})
	doc.Find(episodeSelectors).Each(func(i int, s *goquery.Selection) {
		label := anchorText(s)
		u := e.navURL(s)
		key := u
		if key == "" {
			key = "label:" + label
		}
		if label == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		season, number := seasonEpisode(label)
		if n := attrNumber(s, "data-episode"); n > 0 {
			number = n
		}
		if n := attrNumber(s, "data-season"); n > 0 {
			season = n
		}
		out = append(out, models.EpisodeSummary{
			Label:  label,
			Title:  titleAttr(s, label),
			URL:    u,
			ID:     navID(s, u),
			Season: season,
			Number: number,
		})
	})
	return out
}

func (e *Extractor) navURL(s *goquery.Selection) string {
	href, ok := s.Attr("href")
	if !ok {
		href, ok = s.Find("a[href]").First().Attr("href")
	}
	if !ok || rejected(strings.TrimSpace(href)) {
		return ""
	}
	return heuristics.AbsoluteURL(e.base, href)
}

func navID(s *goquery.Selection, u string) string {
	if v, ok := s.Attr("data-id"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if u == "" {
		return ""
	}
	return heuristics.LastPathSegment(u)
}

func titleAttr(s *goquery.Selection, fallback string) string {
	if t, ok := s.Attr("title"); ok && cleanText(t) != "" {
		return cleanText(t)
	}
	return fallback
}

func attrNumber(s *goquery.Selection, attr string) int {
	v, ok := s.Attr(attr)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
