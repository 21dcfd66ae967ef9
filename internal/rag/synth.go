package rag

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"support-rag/internal/models"
)

var sentenceSplitRe = regexp.MustCompile(models.SentenceSplitRegex)

// Synthesize builds the reply for query from ranked candidates. With no
// candidates it answers with a canned greeting or "don't know" message.
// The returned response is never empty.
func (r *RAG) Synthesize(query string, candidates []models.ScoredCandidate) models.Answer {
	answer := models.Answer{Query: query, Sources: []string{}}

	if len(candidates) == 0 {
		answer.Response = r.fallback(query)
		return answer
	}

	top := candidates[:min(len(candidates), r.cfg.RAG.TopDocuments)]
	prefix := r.cfg.Responses.Prefix

	sentences := r.collectSentences(query, top)
	if len(sentences) > 0 {
		answer.Sources = r.collectSources(top)
		answer.CandidatesUsed = len(top)

		var b strings.Builder
		b.WriteString(prefix)
		if len(answer.Sources) > 0 {
			b.WriteString(" (Sources: ")
			b.WriteString(strings.Join(answer.Sources, models.SourcesSeparator))
			b.WriteString(")")
		}
		b.WriteString(": ")
		b.WriteString(strings.Join(sentences, models.SentenceSeparator))
		b.WriteString(".")
		answer.Response = b.String()
		return answer
	}

	first := firstSentence(top[0].Document.Content)
	if first == "" {
		answer.Response = r.fallback(query)
		return answer
	}
	answer.CandidatesUsed = 1
	if url := top[0].Document.Metadata.SourceURL; url != "" {
		answer.Sources = []string{url}
	}
	answer.Response = prefix + ": " + first + "."
	return answer
}

// collectSentences picks the relevant sentences of each document in rank
// order, dropping exact repeats.
func (r *RAG) collectSentences(query string, top []models.ScoredCandidate) []string {
	var words []string
	for _, tok := range Tokenize(query) {
		if len(tok) >= r.cfg.RAG.MinMatchWordLength {
			words = append(words, tok)
		}
	}
	if len(words) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var picked []string
	for _, c := range top {
		for _, s := range r.relevantSentences(c.Document.Content, words) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			picked = append(picked, s)
			if len(picked) == r.cfg.RAG.MaxSentences {
				return picked
			}
		}
	}
	return picked
}

// relevantSentences returns, in document order, up to SentencesPerDocument
// sentences long enough to be meaningful that mention one of words.
func (r *RAG) relevantSentences(content string, words []string) []string {
	var kept []string
	for _, s := range splitSentences(content) {
		if utf8.RuneCountInString(s) < r.cfg.RAG.MinSentenceLength {
			continue
		}
		lowered := strings.ToLower(s)
		for _, w := range words {
			if strings.Contains(lowered, w) {
				kept = append(kept, s)
				break
			}
		}
		if len(kept) == r.cfg.RAG.SentencesPerDocument {
			break
		}
	}
	return kept
}

func (r *RAG) collectSources(top []models.ScoredCandidate) []string {
	sources := []string{}
	seen := make(map[string]struct{})
	for _, c := range top {
		url := strings.TrimSpace(c.Document.Metadata.SourceURL)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		sources = append(sources, url)
		if len(sources) == r.cfg.RAG.MaxSources {
			break
		}
	}
	return sources
}

func (r *RAG) fallback(query string) string {
	if r.greetingRe != nil && r.greetingRe.MatchString(query) {
		return r.pick(r.cfg.Responses.Greetings, models.DefaultGreetings)
	}
	return r.pick(r.cfg.Responses.Unknowns, models.DefaultUnknowns)
}

func (r *RAG) pick(options, defaults []string) string {
	if len(options) == 0 {
		options = defaults
	}
	i := r.picker.Pick(len(options))
	if i < 0 || i >= len(options) {
		i = 0
	}
	return options[i]
}

func splitSentences(content string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.Split(content, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// firstSentence returns the raw content up to its first period.
func firstSentence(content string) string {
	if i := strings.IndexByte(content, '.'); i >= 0 {
		content = content[:i]
	}
	return strings.TrimSpace(content)
}
