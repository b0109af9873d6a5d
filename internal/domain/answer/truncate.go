package answer

import "strings"

// Ellipsis is appended to truncated answers.
const Ellipsis = "..."

// Truncate keeps the first maxWords whitespace-separated words of text.
// Truncated output is joined with single spaces and ends with Ellipsis;
// text within the limit is returned unchanged. maxWords <= 0 disables truncation.
func Truncate(text string, maxWords int) string {
	if maxWords <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + Ellipsis
}
