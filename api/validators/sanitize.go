package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps free-text input
// (decline reasons, cursors) at maxLen bytes. maxLen <= 0 means uncapped.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
