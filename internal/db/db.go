package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"support-rag/internal/config"
	"support-rag/internal/models"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            string          `bun:"id,pk"`
	Content       string          `bun:"content,notnull"`
	Metadata      models.Metadata `bun:"metadata,type:jsonb"`
	CreatedAt     time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the Supabase database with the configured driver
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}
	switch cfg.Driver {
	case config.DriverPostgres:
		sqldb, err := sql.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return sqldb, nil
	default:
		opts := []pgdriver.Option{pgdriver.WithDSN(cfg.URL)}
		if cfg.Key != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Key))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	}
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// StoreDocuments upserts documents by id
func StoreDocuments(ctx context.Context, db *bun.DB, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&docs).
		On("CONFLICT (id) DO UPDATE").
		Set("content = EXCLUDED.content").
		Set("metadata = EXCLUDED.metadata").
		Exec(ctx)
	return err
}

// SearchDocuments returns documents containing any of the keywords, oldest first
func SearchDocuments(ctx context.Context, db *bun.DB, keywords []string, limit int) ([]Document, error) {
	patterns := likePatterns(keywords)
	if len(patterns) == 0 || limit <= 0 {
		return []Document{}, nil
	}

	var docs []Document
	err := db.NewSelect().
		Model(&docs).
		Column("id", "content", "metadata", "created_at").
		Where("d.content ILIKE ANY (?)", pgdialect.Array(patterns)).
		OrderExpr("d.created_at ASC, d.id ASC").
		Limit(limit).
		Scan(ctx)
	return docs, err
}

// drop table documents
func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePatterns(keywords []string) []string {
	var patterns []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			patterns = append(patterns, "%"+likeEscaper.Replace(kw)+"%")
		}
	}
	return patterns
}

func toModel(d Document) models.Document {
	return models.Document{ID: d.ID, Content: d.Content, Metadata: d.Metadata}
}

func fromModel(d models.Document) Document {
	return Document{ID: d.ID, Content: d.Content, Metadata: d.Metadata}
}

// Store exposes a bun database as a document store
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Init(ctx context.Context) error {
	return InitDB(ctx, s.db)
}

func (s *Store) Reset(ctx context.Context) error {
	if err := DropDocuments(ctx, s.db); err != nil {
		return fmt.Errorf("failed to drop documents: %w", err)
	}
	return InitDB(ctx, s.db)
}

func (s *Store) StoreDocuments(ctx context.Context, docs []models.Document) error {
	rows := make([]Document, len(docs))
	for i, d := range docs {
		rows[i] = fromModel(d)
	}
	if err := StoreDocuments(ctx, s.db, rows); err != nil {
		return fmt.Errorf("failed to store documents: %w", err)
	}
	return nil
}

func (s *Store) SearchDocuments(ctx context.Context, keywords []string, limit int) ([]models.Document, error) {
	rows, err := SearchDocuments(ctx, s.db, keywords, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	docs := make([]models.Document, len(rows))
	for i, r := range rows {
		docs[i] = toModel(r)
	}
	return docs, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
