package chat

import (
	"regexp"
	"strconv"
)

// Citation is one bracketed source reference found in an answer.
type Citation struct {
	Paper string `json:"paper"`
	Page  int    `json:"page"`
}

var citationPattern = regexp.MustCompile(`\[([^,]+), Page (\d+)\]`)

// ExtractCitations scans an answer for "[<source>, Page <n>]" markers and
// returns them deduplicated, preserving first-seen order.
func ExtractCitations(answer string) []Citation {
	matches := citationPattern.FindAllStringSubmatch(answer, -1)

	citations := make([]Citation, 0, len(matches))
	seen := make(map[Citation]struct{}, len(matches))

	for _, m := range matches {
		page, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		c := Citation{Paper: m[1], Page: page}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		citations = append(citations, c)
	}

	return citations
}
