package heuristics

import (
	"strings"

	"github.com/video-analitics/catalog/pkg/models"
)

type purposeRule struct {
	purpose  models.Purpose
	keywords []string
}

// purposeRules is evaluated top to bottom; the first matching family wins.
var purposeRules = []purposeRule{
	{models.PurposeSubtitle, []string{"subtitle", "زیرنویس", ".srt", ".vtt", "subscene", "opensubtitles"}},
	{models.PurposeStream, []string{"stream", "watch", "player", "embed", "online"}},
	{models.PurposeTorrent, []string{"torrent", "magnet:"}},
}

var subtitleTextKeywords = []string{"subtitle", "subtitles", "زیرنویس", "srt", "subs"}

// LinkType classifies the purpose of a link from its url and text.
func LinkType(url, text string) models.Purpose {
	s := strings.ToLower(url + " " + text)
	for _, r := range purposeRules {
		if containsAny(s, r.keywords) {
			return r.purpose
		}
	}
	return models.PurposeDownload
}

// IsSubtitleText reports whether the visible link text names a subtitle.
func IsSubtitleText(text string) bool {
	s := strings.ToLower(text)
	for _, w := range strings.FieldsFunc(s, isSeparator) {
		for _, kw := range subtitleTextKeywords {
			if w == kw {
				return true
			}
		}
	}
	return strings.Contains(s, "subtitle") || strings.Contains(s, "زیرنویس")
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '.', ',', '-', '_', '(', ')', '[', ']', '|', '/', ':':
		return true
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
