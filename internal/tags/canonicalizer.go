package tags

import (
	"regexp"
	"strings"
)

// DefaultMaxTags caps the number of canonical tags derived from one scene.
const DefaultMaxTags = 15

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize lowercases a raw token, collapses whitespace to single
// underscores, and strips surrounding punctuation underscores.
func Normalize(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	t = whitespaceRe.ReplaceAllString(t, "_")
	t = strings.Trim(t, "_.,;:!?\"'`")
	return t
}

// SplitList splits a comma-separated tag string into trimmed tokens,
// dropping empties.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Canonicalizer maps raw tag candidates to a deduplicated, validated,
// length-capped sequence of canonical tags. It never fails: fully invalid
// input yields an empty result and the composer supplies defaults.
type Canonicalizer struct {
	maxTags int
}

// NewCanonicalizer creates a canonicalizer with the given cap. A cap of
// zero or less falls back to DefaultMaxTags.
func NewCanonicalizer(maxTags int) *Canonicalizer {
	if maxTags <= 0 {
		maxTags = DefaultMaxTags
	}
	return &Canonicalizer{maxTags: maxTags}
}

// Canonicalize runs the fixed pipeline over raw candidates:
// normalize, blacklist-reject, alias-rewrite, vocabulary-filter,
// order-preserving dedup, priority-aware cap.
//
// Tokens listed in freeform bypass the closed-vocabulary check (after
// normalization and blacklist screening). This is how a literal location
// string survives canonicalization in freeform deployments.
func (c *Canonicalizer) Canonicalize(candidates []string, freeform map[string]bool) []string {
	seen := make(map[string]bool, len(candidates))
	result := make([]string, 0, len(candidates))

	for _, raw := range candidates {
		tag := Normalize(raw)
		if tag == "" {
			continue
		}
		if IsBlacklisted(tag) {
			continue
		}
		tag = ResolveAlias(tag)
		if !IsValidTag(tag) && !freeform[tag] {
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}

	return c.cap(result, freeform)
}

// cap truncates to maxTags, dropping lowest-priority tags first.
// Categorized tags (location, time, atmosphere) and freeform passthroughs
// outrank general scenery tags; within a class, later tags go first.
func (c *Canonicalizer) cap(tagList []string, freeform map[string]bool) []string {
	if len(tagList) <= c.maxTags {
		return tagList
	}

	excess := len(tagList) - c.maxTags
	keep := make(map[int]bool, len(tagList))
	for i := range tagList {
		keep[i] = true
	}

	// First pass: drop uncategorized tags from the tail.
	for i := len(tagList) - 1; i >= 0 && excess > 0; i-- {
		if CategoryOf(tagList[i]) == CategoryNone && !freeform[tagList[i]] {
			keep[i] = false
			excess--
		}
	}
	// Second pass: still over cap, drop categorized tags from the tail.
	for i := len(tagList) - 1; i >= 0 && excess > 0; i-- {
		if keep[i] {
			keep[i] = false
			excess--
		}
	}

	out := make([]string, 0, c.maxTags)
	for i, t := range tagList {
		if keep[i] {
			out = append(out, t)
		}
	}
	return out
}

// MaxTags returns the configured cap.
func (c *Canonicalizer) MaxTags() int {
	return c.maxTags
}
