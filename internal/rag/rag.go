package rag

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"support-rag/internal/config"
	"support-rag/internal/models"
)

// DocumentStore returns up to limit documents matching any of the keywords.
// Store-side matching is only a prefilter; results are re-scored here.
type DocumentStore interface {
	SearchDocuments(ctx context.Context, keywords []string, limit int) ([]models.Document, error)
}

// RAG answers chat messages from a document corpus. It holds no per-query
// state and is safe for concurrent use when the store is.
type RAG struct {
	store      DocumentStore
	cfg        *config.Config
	picker     Picker
	stopWords  map[string]struct{}
	greetingRe *regexp.Regexp
}

func NewRAG(store DocumentStore, cfg *config.Config) *RAG {
	// if config is nil, use default values
	if cfg == nil {
		cfg = config.Default()
	}
	c := *cfg
	c.Normalize()
	cfg = &c

	stopWords := make(map[string]struct{}, len(cfg.RAG.StopWords))
	for _, w := range cfg.RAG.StopWords {
		stopWords[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}

	return &RAG{
		store:      store,
		cfg:        cfg,
		picker:     globalPicker{},
		stopWords:  stopWords,
		greetingRe: greetingPattern(cfg.Responses.GreetingWords),
	}
}

// SetPicker replaces the source used to choose canned responses.
func (r *RAG) SetPicker(p Picker) {
	if p == nil {
		p = globalPicker{}
	}
	r.picker = p
}

// Query answers a single chat message. It never fails: an empty query or a
// store error ends in a canned response.
func (r *RAG) Query(ctx context.Context, query string) models.Answer {
	candidates, err := r.Search(ctx, query)
	if err != nil {
		var retrievalErr *RetrievalError
		switch {
		case errors.Is(err, ErrEmptyQuery):
			log.Debug().Msg("Empty query, skipping retrieval")
		case errors.As(err, &retrievalErr):
			log.Warn().Err(err).Str("query", query).Msg("Retrieval failed, using fallback response")
		default:
			log.Error().Err(err).Str("query", query).Msg("Search failed, using fallback response")
		}
		candidates = nil
	}

	answer := r.Synthesize(query, candidates)
	log.Debug().
		Int("candidates", len(candidates)).
		Int("candidates_used", answer.CandidatesUsed).
		Strs("sources", answer.Sources).
		Msg("Answered query")
	return answer
}

func greetingPattern(words []string) *regexp.Regexp {
	var quoted []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}
