package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	titleYearRegex  = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)`)
	yearRegex       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	// S01E02, s1e2, S01 E02
	seasonEpisodeRegex = regexp.MustCompile(`(?i)\bS(\d{1,2})\s*E(\d{1,3})\b`)
	seasonRegex        = regexp.MustCompile(`(?i)(?:\bseason|فصل)\s*(\d{1,2})`)
	episodeRegex       = regexp.MustCompile(`(?i)(?:\bepisode|\bep\.?|قسمت)\s*(\d{1,3})`)
)

var titleSuffixes = []string{
	" watch online",
	" free download",
	" download",
	" دانلود",
}

func cleanText(s string) string {
	s = norm.NFC.String(s)
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit])
}

func parseTitle(raw string) (title string, year int) {
	raw = cleanText(raw)
	for _, s := range titleSuffixes {
		if n := len(raw) - len(s); n > 0 && strings.EqualFold(raw[n:], s) {
			raw = strings.TrimSpace(raw[:n])
		}
	}

	if matches := titleYearRegex.FindStringSubmatch(raw); len(matches) >= 3 {
		title = strings.TrimSpace(matches[1])
		y, _ := strconv.Atoi(matches[2])
		if isValidYear(y) {
			year = y
		}
		return
	}

	title = raw
	year = findYear(raw)
	return
}

func findYear(s string) int {
	if m := yearRegex.FindString(s); m != "" {
		y, _ := strconv.Atoi(m)
		if isValidYear(y) {
			return y
		}
	}
	return 0
}

func isValidYear(year int) bool {
	return year >= 1900 && year <= 2100
}

// seasonEpisode parses season and episode numbers out of free text.
// Zero means the number was not found.
func seasonEpisode(s string) (season, episode int) {
	if m := seasonEpisodeRegex.FindStringSubmatch(s); len(m) == 3 {
		season, _ = strconv.Atoi(m[1])
		episode, _ = strconv.Atoi(m[2])
		return
	}
	if m := seasonRegex.FindStringSubmatch(s); len(m) == 2 {
		season, _ = strconv.Atoi(m[1])
	}
	if m := episodeRegex.FindStringSubmatch(s); len(m) == 2 {
		episode, _ = strconv.Atoi(m[1])
	}
	return
}
