package rag

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"support-rag/internal/models"
)

// Search retrieves candidates for query from the store and ranks them by
// Score, highest first. Candidates with equal scores keep the store's order.
func (r *RAG) Search(ctx context.Context, query string) ([]models.ScoredCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	keywords := Keywords(query, r.cfg.RAG.MinKeywordLength, r.stopWords)
	if len(keywords) == 0 {
		log.Debug().Str("query", query).Msg("No searchable keywords in query")
		return []models.ScoredCandidate{}, nil
	}

	if r.store == nil {
		return nil, &RetrievalError{Err: ErrStoreUnavailable}
	}

	limit := r.cfg.RAG.MaxCandidates
	log.Debug().Strs("keywords", keywords).Int("limit", limit).Msg("Searching documents")

	docs, err := r.store.SearchDocuments(ctx, keywords, limit)
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}
	// the store may ignore the limit
	if len(docs) > limit {
		docs = docs[:limit]
	}

	candidates := make([]models.ScoredCandidate, len(docs))
	for i, doc := range docs {
		candidates[i] = models.ScoredCandidate{
			Document:   doc,
			Similarity: Score(query, doc.Content),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})

	for _, c := range candidates {
		log.Debug().Str("id", c.Document.ID).Float64("similarity", c.Similarity).Msg("Scored candidate")
	}

	return candidates, nil
}
