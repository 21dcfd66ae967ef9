// Package memstore is an in-memory document store for tests and
// ephemeral command line runs.
package memstore

import (
	"context"
	"errors"
	"strings"
	"sync"

	"support-rag/internal/models"
)

// ErrNotFound indicates a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Store keeps documents in insertion order.
type Store struct {
	mu      sync.RWMutex
	order   []string
	docs    map[string]models.Document
	failErr error
}

func New() *Store {
	return &Store{docs: make(map[string]models.Document)}
}

// StoreDocuments saves or replaces documents. A replaced document keeps its
// original position.
func (s *Store) StoreDocuments(_ context.Context, docs []models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	for _, doc := range docs {
		if doc.ID == "" {
			return errors.New("document id is required")
		}
		if _, ok := s.docs[doc.ID]; !ok {
			s.order = append(s.order, doc.ID)
		}
		s.docs[doc.ID] = doc
	}
	return nil
}

func (s *Store) GetDocument(_ context.Context, id string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *Store) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return nil
	}
	delete(s.docs, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// SearchDocuments returns, in insertion order, up to limit documents whose
// content contains any keyword, ignoring case.
func (s *Store) SearchDocuments(ctx context.Context, keywords []string, limit int) ([]models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, s.failErr
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}

	result := []models.Document{}
	if len(lowered) == 0 || limit <= 0 {
		return result, nil
	}
	for _, id := range s.order {
		doc := s.docs[id]
		content := strings.ToLower(doc.Content)
		for _, kw := range lowered {
			if strings.Contains(content, kw) {
				result = append(result, doc)
				break
			}
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}
