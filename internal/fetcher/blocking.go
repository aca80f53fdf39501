package fetcher

import (
	"regexp"
	"strings"
)

type BlockResult struct {
	Blocked   bool
	IsCaptcha bool
	Reason    string
}

// Interstitials are small; anything longer is treated as real content and
// only its title is checked.
const maxInterstitialSize = 10000

var (
	ipInTitleRegex = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	titleRegex     = regexp.MustCompile(`(?i)<title[^>]*>([^<]*)</title>`)
)

var blockingPhrases = []string{
	"Sorry, your request has been denied",
	"Sorry, you have been blocked",
	"Attention Required! | Cloudflare",
	"Just a moment...",
	"Your IP is blocked",
	"Your IP has been blocked",
	"Access Denied",
	"403 Forbidden",
}

var (
	captchaWidgets = []string{
		"g-recaptcha",
		"h-captcha",
		"cf-turnstile",
		"cf-challenge",
		"challenge-platform",
	}
	captchaPrompts = []string{
		"verify you are human",
		"i'm not a robot",
		"i am not a robot",
		"checking your browser",
		"complete the security check",
	}
)

// DetectBlocking reports whether a 2xx page is actually a block or
// captcha interstitial. Checks run from the most to the least specific.
func DetectBlocking(html string) BlockResult {
	lower := strings.ToLower(html)
	title := extractTitle(html)
	short := len(html) < maxInterstitialSize

	if short && isCaptchaChallenge(lower) {
		return BlockResult{Blocked: true, IsCaptcha: true, Reason: "captcha"}
	}

	lowerTitle := strings.ToLower(title)
	for _, phrase := range blockingPhrases {
		p := strings.ToLower(phrase)
		if strings.Contains(lowerTitle, p) || (short && strings.Contains(lower, p)) {
			return BlockResult{Blocked: true, Reason: phrase}
		}
	}

	if ipInTitleRegex.MatchString(title) {
		return BlockResult{Blocked: true, Reason: "IP in title"}
	}

	if short && strings.EqualFold(title, "error") {
		return BlockResult{Blocked: true, Reason: "error title"}
	}

	if len(html) < 3000 && strings.Contains(lower, "noindex") && title == "" {
		return BlockResult{Blocked: true, Reason: "noindex + empty title"}
	}

	return BlockResult{}
}

// isCaptchaChallenge needs a widget and a prompt together; a widget alone is
// usually a comment or contact form.
func isCaptchaChallenge(lower string) bool {
	return containsAny(lower, captchaWidgets) && containsAny(lower, captchaPrompts)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func extractTitle(html string) string {
	match := titleRegex.FindStringSubmatch(html)
	if len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return ""
}
