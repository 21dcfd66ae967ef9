package rag

import (
	"math"
	"regexp"
	"strings"

	"support-rag/internal/models"
)

var tokenSplitRe = regexp.MustCompile(models.TokenSplitRegex)

// Tokenize splits text on non-word characters and returns the distinct
// lowercase tokens in first-seen order.
func Tokenize(text string) []string {
	parts := tokenSplitRe.Split(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(parts))
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		tokens = append(tokens, p)
	}
	return tokens
}

// Keywords returns the query tokens worth sending to the store: at least
// minLength characters long and not a stop word.
func Keywords(query string, minLength int, stopWords map[string]struct{}) []string {
	var keywords []string
	for _, tok := range Tokenize(query) {
		if len(tok) < minLength {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		keywords = append(keywords, tok)
	}
	return keywords
}

// Score rates content against query by lexical overlap:
//
//	(matches / distinctTokens) * (1 + min(occurrences/100, 1))
//
// Occurrences are counted as case-insensitive substrings, so a token inside a
// longer word still counts. The result lies in [0, 2]; an empty query scores 0.
func Score(query, content string) float64 {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return 0
	}

	lowered := strings.ToLower(content)
	matches, occurrences := 0, 0
	for _, tok := range tokens {
		n := strings.Count(lowered, tok)
		if n > 0 {
			matches++
			occurrences += n
		}
	}

	coverage := float64(matches) / float64(len(tokens))
	density := 1 + math.Min(float64(occurrences)/100, 1)
	return coverage * density
}
