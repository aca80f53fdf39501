package heuristics

import (
	"regexp"
	"strings"
)

const DefaultQuality = "Standard"

// qualityTokens is ordered: the first token found wins.
var qualityTokens = []string{
	"4K",
	"2160p",
	"1080p",
	"720p",
	"480p",
	"360p",
	"HD",
	"CAM",
	"TS",
	"BluRay",
	"WEB-DL",
	"HDTV",
	"HDRip",
	"WEBRip",
}

var qualityRules = compileTokens(qualityTokens)

type tokenRule struct {
	label string
	re    *regexp.Regexp
}

// compileTokens builds case-insensitive matchers that only accept a token
// when it is not glued to other letters or digits.
func compileTokens(tokens []string) []tokenRule {
	rules := make([]tokenRule, 0, len(tokens))
	for _, t := range tokens {
		rules = append(rules, tokenRule{
			label: t,
			re:    regexp.MustCompile(`(?i)(?:^|[^a-z0-9])` + regexp.QuoteMeta(t) + `(?:[^a-z0-9]|$)`),
		})
	}
	return rules
}

func firstToken(rules []tokenRule, s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	for _, r := range rules {
		if r.re.MatchString(s) {
			return r.label, true
		}
	}
	return "", false
}

// Quality returns the first known quality token found in text.
func Quality(text string) string {
	if q, ok := firstToken(qualityRules, text); ok {
		return q
	}
	return DefaultQuality
}
