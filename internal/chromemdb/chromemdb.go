package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"support-rag/internal/models"
)

// metadata keys stored with every chromem document
const (
	metaSourceURL   = "source_url"
	metaTitle       = "title"
	metaDescription = "description"
	metaProcessedAt = "processed_at"
)

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embed         chromem.EmbeddingFunc
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
}

const (
	compress = false
)

// NewVectorDBManager initializes a new vector database manager
func NewVectorDBManager(dbPath, collectionName string, inMemory bool, encryptionKey string, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	if embed == nil {
		return nil, fmt.Errorf("embedding function is required")
	}
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	return &VectorDBManager{
		db:            db,
		embed:         embed,
		dbPath:        dbPath,
		compress:      compress,
		encryptionKey: encryptionKey,
		filePath:      filepath.Join(dbPath, collectionName+".chromem"),
	}, nil
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	c, err := m.db.GetOrCreateCollection(collectionName, nil, m.embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	return c, nil
}

func (m *VectorDBManager) Count() int {
	if m.collection == nil {
		return 0
	}
	return m.collection.Count()
}

// StoreDocuments adds documents, embedding their content with the collection's function
func (m *VectorDBManager) StoreDocuments(ctx context.Context, docs []models.Document) error {
	if m.collection == nil {
		return fmt.Errorf("collection is required")
	}
	if len(docs) == 0 {
		return nil
	}
	chromemDocs := make([]chromem.Document, len(docs))
	for i, d := range docs {
		chromemDocs[i] = chromem.Document{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: toMetadataMap(d.Metadata),
		}
	}
	if err := m.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// SearchDocuments ranks the collection by similarity to the keywords and
// keeps up to limit documents containing any keyword, ignoring case.
func (m *VectorDBManager) SearchDocuments(ctx context.Context, keywords []string, limit int) ([]models.Document, error) {
	if m.collection == nil {
		return nil, fmt.Errorf("collection is required")
	}
	var lowered []string
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}
	count := m.collection.Count()
	if len(lowered) == 0 || count == 0 || limit <= 0 {
		return []models.Document{}, nil
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryText: strings.Join(lowered, " "),
		NResults:  count,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	docs := []models.Document{}
	for _, res := range results {
		if !containsAny(res.Content, lowered) {
			continue
		}
		docs = append(docs, models.Document{
			ID:       res.ID,
			Content:  res.Content,
			Metadata: fromMetadataMap(res.Metadata),
		})
		if len(docs) == limit {
			break
		}
	}
	log.Debug().Int("results", len(results)).Int("matched", len(docs)).Msg("Chromem search")
	return docs, nil
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	if m.collection == nil {
		return fmt.Errorf("collection is required")
	}
	err := m.db.DeleteCollection(m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	m.collection = nil
	return nil
}

// export to file
func (m *VectorDBManager) Export(ctx context.Context) error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.collection == nil {
		return fmt.Errorf("collection is required")
	}
	if m.dbPath == "" {
		return fmt.Errorf("db path is required")
	}

	log.Debug().
		Str("collection", m.collection.Name).
		Str("file", m.filePath).
		Bool("compress", m.compress).
		Msg("Exporting collection")
	err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// import from file
func (m *VectorDBManager) Import(ctx context.Context) error {
	if m.collection == nil {
		return fmt.Errorf("collection is required")
	}
	name := m.collection.Name
	err := m.db.ImportFromFile(m.filePath, m.encryptionKey, name)
	if err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	// the import replaces the collection object
	if c := m.db.GetCollection(name, m.embed); c != nil {
		m.collection = c
	}
	return nil
}

func (m *VectorDBManager) FilePath() string {
	return m.filePath
}

func containsAny(content string, keywords []string) bool {
	lowered := strings.ToLower(content)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func toMetadataMap(md models.Metadata) map[string]string {
	out := map[string]string{}
	if md.SourceURL != "" {
		out[metaSourceURL] = md.SourceURL
	}
	if md.Title != "" {
		out[metaTitle] = md.Title
	}
	if md.Description != "" {
		out[metaDescription] = md.Description
	}
	if md.ProcessedAt != nil {
		out[metaProcessedAt] = md.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func fromMetadataMap(m map[string]string) models.Metadata {
	md := models.Metadata{
		SourceURL:   m[metaSourceURL],
		Title:       m[metaTitle],
		Description: m[metaDescription],
	}
	if v, ok := m[metaProcessedAt]; ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			md.ProcessedAt = &t
		}
	}
	return md
}
