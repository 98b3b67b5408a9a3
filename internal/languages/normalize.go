package languages

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// canonicalCache memoizes suffix stripping; the same few hundred raw names
// come back on every availability poll.
var canonicalCache *lru.Cache[string, string]

func init() {
	// Size comfortably above the full language directory.
	canonicalCache, _ = lru.New[string, string](2048)
}

// CanonicalName strips a trailing _Video suffix, then a trailing _Audio
// suffix, case-insensitively, and trims surrounding space. If stripping
// leaves nothing, the raw name is returned unchanged.
func CanonicalName(raw string) string {
	if cached, ok := canonicalCache.Get(raw); ok {
		return cached
	}

	name := strings.TrimSpace(raw)
	name = stripSuffixFold(name, "_Video")
	name = stripSuffixFold(name, "_Audio")
	name = strings.TrimSpace(name)
	if name == "" {
		name = raw
	}

	canonicalCache.Add(raw, name)
	return name
}

func stripSuffixFold(s, suffix string) string {
	if len(s) < len(suffix) {
		return s
	}
	if strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return s[:len(s)-len(suffix)]
	}
	return s
}
