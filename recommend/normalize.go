package recommend

import "strings"

// genreAliases maps raw classifier labels to the vocabulary Spotify's
// search grammar understands. Labels without an entry pass through.
var genreAliases = map[string]string{
	"hiphop":  "rap",
	"hip-hop": "rap",
	"rnb":     "r-n-b",
}

// Normalize maps a raw predicted label to a catalog search label.
// Pure, total, and idempotent: alias targets are never themselves aliased.
func Normalize(rawLabel string) string {
	label := strings.ToLower(strings.TrimSpace(rawLabel))
	if mapped, ok := genreAliases[label]; ok {
		return mapped
	}
	return label
}
