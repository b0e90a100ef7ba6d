package history

import (
	"regexp"
	"strings"
)

var (
	tokenRe = regexp.MustCompile(`[^\s"']+|"([^"]*)"|'([^']*)'`)
	wordRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// roleFilters maps query prefixes to message roles.
var roleFilters = map[string]string{
	"user":      "user",
	"ai":        "assistant",
	"assistant": "assistant",
}

// ParseQuery converts user input into FTS5 syntax. Quoted phrases pass
// through untouched, "user:" and "ai:" scope a term to a role, and bare
// words longer than three characters get prefix matching.
func ParseQuery(input string) string {
	tokens := tokenRe.FindAllString(strings.TrimSpace(input), -1)

	var parts []string
	for _, token := range tokens {
		if strings.HasPrefix(token, `"`) || strings.HasPrefix(token, "'") {
			parts = append(parts, token)
			continue
		}

		if prefix, term, ok := strings.Cut(token, ":"); ok {
			if role, known := roleFilters[strings.ToLower(prefix)]; known {
				if term == "" {
					parts = append(parts, "role:"+role)
				} else {
					parts = append(parts, "(role:"+role+" AND content:"+term+")")
				}
				continue
			}
		}

		if len(token) > 3 && wordRe.MatchString(token) {
			parts = append(parts, token+"*")
		} else {
			parts = append(parts, token)
		}
	}

	return strings.Join(parts, " AND ")
}
