package rag

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-rag/internal/models"
)

// --- Mock implementations ---

// fakeStore implements DocumentStore for testing.
type fakeStore struct {
	docs     []models.Document
	err      error
	calls    int
	keywords []string
	limit    int
}

func (f *fakeStore) SearchDocuments(_ context.Context, keywords []string, limit int) ([]models.Document, error) {
	f.calls++
	f.keywords = keywords
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func candidateIDs(cs []models.ScoredCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Document.ID
	}
	return out
}

func TestSearch_RanksDescendingStable(t *testing.T) {
	store := &fakeStore{docs: []models.Document{
		{ID: "a", Content: "apply"},
		{ID: "b", Content: "apply admission"},
		{ID: "c", Content: "apply"},
		{ID: "d", Content: "nothing relevant"},
	}}
	r := NewRAG(store, nil)

	got, err := r.Search(context.Background(), "apply admission")
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c", "d"}, candidateIDs(got))
	for i := 0; i+1 < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Similarity, got[i+1].Similarity)
	}
	assert.InDelta(t, 1.02, got[0].Similarity, 1e-9)
	assert.InDelta(t, 0.505, got[1].Similarity, 1e-9)
	assert.Equal(t, 0.0, got[3].Similarity)
}

func TestSearch_PassesKeywordsAndLimit(t *testing.T) {
	store := &fakeStore{}
	r := NewRAG(store, nil)

	_, err := r.Search(context.Background(), "How do I apply for admission?")
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, []string{"how", "apply", "admission"}, store.keywords)
	assert.Equal(t, 10, store.limit)
}

func TestSearch_TruncatesOversizedStoreResults(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 12; i++ {
		store.docs = append(store.docs, models.Document{ID: fmt.Sprintf("doc-%d", i), Content: "apply"})
	}
	r := NewRAG(store, nil)

	got, err := r.Search(context.Background(), "apply")
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := &fakeStore{}
	r := NewRAG(store, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := r.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
	assert.Equal(t, 0, store.calls)
}

func TestSearch_NoKeywordsSkipsStore(t *testing.T) {
	store := &fakeStore{docs: []models.Document{{ID: "a", Content: "hi"}}}
	r := NewRAG(store, nil)

	got, err := r.Search(context.Background(), "hi to the")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, store.calls)
}

func TestSearch_StoreErrorIsRetrievalError(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewRAG(&fakeStore{err: boom}, nil)

	_, err := r.Search(context.Background(), "tuition fees")
	require.Error(t, err)

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.ErrorIs(t, err, boom)
}

func TestSearch_NilStore(t *testing.T) {
	r := NewRAG(nil, nil)

	_, err := r.Search(context.Background(), "tuition fees")

	var retrievalErr *RetrievalError
	require.ErrorAs(t, err, &retrievalErr)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSearch_EmptyStore(t *testing.T) {
	r := NewRAG(&fakeStore{}, nil)

	got, err := r.Search(context.Background(), "tuition fees")
	require.NoError(t, err)
	assert.Empty(t, got)
}
