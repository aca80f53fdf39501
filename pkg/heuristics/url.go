package heuristics

import (
	"net/url"
	"regexp"
	"strings"
)

var schemeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)

// AbsoluteURL resolves ref against the site base. An empty ref yields "".
func AbsoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if schemeRegex.MatchString(ref) {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}

	bu, err := url.Parse(strings.TrimSpace(base))
	if err != nil || bu.Scheme == "" {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return strings.TrimSuffix(bu.Scheme+"://"+bu.Host, "/") + "/" + strings.TrimPrefix(ref, "/")
	}
	return bu.ResolveReference(ru).String()
}

// LastPathSegment returns the last non-empty path segment of u.
func LastPathSegment(u string) string {
	p := u
	if parsed, err := url.Parse(u); err == nil {
		p = parsed.Path
	}
	parts := strings.Split(p, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(parts[i]); s != "" {
			return s
		}
	}
	return ""
}
