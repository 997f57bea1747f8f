package utils

// Truncate shortens s to maxLen bytes with a trailing ellipsis. Used to keep
// captured-text previews readable in debug logs.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
