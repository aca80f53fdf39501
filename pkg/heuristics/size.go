package heuristics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const UnknownSize = "Size Unknown"

var (
	sizeRegex  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s?(KB|MB|GB|TB)\b`)
	bytesRegex = regexp.MustCompile(`(?i)\b(\d+)\s*(?:bytes?|b)\b`)
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
)

// Size finds a human readable file size in text, falling back to context.
func Size(text, context string) string {
	s := text + " " + context

	if m := sizeRegex.FindStringSubmatch(s); len(m) > 2 {
		return m[1] + " " + strings.ToUpper(m[2])
	}

	if m := bytesRegex.FindStringSubmatch(s); len(m) > 1 {
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err == nil {
			return formatBytes(n)
		}
	}

	return UnknownSize
}

func formatBytes(n uint64) string {
	switch {
	case n > gib:
		return fmt.Sprintf("%.2f GB", float64(n)/gib)
	case n > mib:
		return fmt.Sprintf("%.2f MB", float64(n)/mib)
	case n > kib:
		return fmt.Sprintf("%.2f KB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
