// Package bypass decides whether a question should skip the answer cache.
package bypass

import "strings"

// DefaultKeywords signal that the user wants a fresh answer.
var DefaultKeywords = []string{"random", "new", "generate", "fresh"}

// Classifier matches configured keywords as substrings of the lowercased question.
// Matching is not token-based: "brand new" and "newt" both contain "new".
type Classifier struct {
	keywords []string
}

// New creates a Classifier. A nil or empty keyword list falls back to DefaultKeywords.
func New(keywords []string) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			normalized = append(normalized, k)
		}
	}
	return &Classifier{keywords: normalized}
}

// ShouldBypass reports whether the cache must not be consulted for question.
func (c *Classifier) ShouldBypass(question string, forceNew bool) bool {
	if forceNew {
		return true
	}
	q := strings.ToLower(question)
	for _, k := range c.keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// Keywords returns the normalized keyword set.
func (c *Classifier) Keywords() []string { return c.keywords }
