package heuristics

import "strings"

const DefaultFormat = "MP4"

var formatTokens = []string{"mkv", "mp4", "avi", "mov", "wmv", "flv", "webm", "srt", "sub", "ass", "ssa"}

var formatRules = compileTokens(formatTokens)

// Format infers the container or subtitle format from url and text.
func Format(url, text string) string {
	if f, ok := firstToken(formatRules, strings.ToLower(url+" "+text)); ok {
		return strings.ToUpper(f)
	}
	return DefaultFormat
}
