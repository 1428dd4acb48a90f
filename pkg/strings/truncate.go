package strings

import (
	"strconv"
	"strings"
)

// DefaultBodyPreviewLen is the maximum length of response bodies quoted in
// error messages and debug logs.
const DefaultBodyPreviewLen = 200

// MinTruncateLen is the minimum maxLen value for Truncate.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// Truncate collapses all whitespace runs (including newlines) into single
// spaces and shortens the result to maxLen runes, appending "..." when
// something was cut. maxLen is clamped to MinTruncateLen.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// redactVisible is the number of leading characters RedactToken keeps.
const redactVisible = 6

// RedactToken returns a preview of a credential that is safe to print:
// the first few characters followed by the total length. Short or empty
// values are fully masked.
func RedactToken(token string) string {
	if token == "" {
		return "<none>"
	}
	runes := []rune(token)
	if len(runes) <= redactVisible*2 {
		return "[REDACTED]"
	}
	return string(runes[:redactVisible]) + "...[" + strconv.Itoa(len(runes)) + " chars]"
}
