package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"support-rag/internal/chromemdb"
	"support-rag/internal/config"
	"support-rag/internal/db"
	"support-rag/internal/embedding"
	"support-rag/internal/helper"
	"support-rag/internal/memstore"
	"support-rag/internal/models"
	"support-rag/internal/parser"
	"support-rag/internal/rag"
)

const (
	configFilePath = "./configs/config.yaml"
)

// documentStore is what the command needs from every backend
type documentStore interface {
	rag.DocumentStore
	StoreDocuments(ctx context.Context, docs []models.Document) error
}

type backend struct {
	store documentStore
	reset func(ctx context.Context) error
	flush func(ctx context.Context) error
	close func() error
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	filePath := flag.String("file", "", "Path to a corpus file (.yaml, .json, .txt, .md) to ingest")
	sourceURL := flag.String("source", "", "Source URL attached to documents ingested from .txt/.md files")
	query := flag.String("query", "", "Query to be answered")
	dryRun := flag.Bool("dry-run", false, "Dry run, parse the file and print documents without saving")
	reset := flag.Bool("reset", false, "Drop all stored documents before ingesting")
	flag.Parse()

	if *filePath == "" && *query == "" {
		log.Fatal().Msg("Please provide a corpus file using the -file flag and/or a query using the -query flag")
	}

	cfg := loadConfig(*configPath)
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, keeping info")
	}
	log.Debug().
		Str("backend", cfg.Store.Backend).
		Int("max_candidates", cfg.RAG.MaxCandidates).
		Strs("stop_words", cfg.RAG.StopWords).
		Msg("Loaded config")

	ctx := context.Background()

	if *filePath != "" && *dryRun {
		docs, err := parser.ParseDocuments(*filePath, *sourceURL, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing corpus file")
		}
		log.Info().Int("documents", len(docs)).Msg("Parsed corpus file")
		if err := helper.PrintYAML(os.Stdout, map[string][]models.Document{"documents": docs}); err != nil {
			log.Warn().Err(err).Msg("Error printing documents")
		}
		if *query == "" {
			return
		}
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Error opening document store")
	}
	defer b.close()

	if *reset {
		if err := b.reset(ctx); err != nil {
			log.Fatal().Err(err).Msg("Error clearing documents")
		}
		log.Info().Msg("Cleared stored documents")
	}

	if *filePath != "" && !*dryRun {
		if err := ingest(ctx, b, *filePath, *sourceURL, cfg); err != nil {
			log.Fatal().Err(err).Msg("Error ingesting corpus file")
		}
	}

	if *query != "" {
		answerQuery(ctx, b.store, cfg, *query)
	}
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err == nil {
		return cfg
	}
	if path == configFilePath && errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("Config file not found, using defaults")
		cfg, err = config.Parse(nil)
		if err == nil {
			return cfg
		}
	}
	log.Fatal().Err(err).Str("path", path).Msg("Error loading config")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	noop := func(context.Context) error { return nil }

	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn().Msg("Using in-memory store, documents are lost on exit")
		return &backend{store: memstore.New(), reset: noop, flush: noop, close: func() error { return nil }}, nil

	case config.BackendChromem:
		return openChromem(ctx, cfg)

	default:
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store := db.NewStore(db.NewDB(sqldb, cfg.Database.Debug))
		if err := store.Init(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return &backend{store: store, reset: store.Reset, flush: noop, close: store.Close}, nil
	}
}

func openChromem(ctx context.Context, cfg *config.Config) (*backend, error) {
	if err := helper.CreateFolder(cfg.Store.Path); err != nil {
		return nil, err
	}

	embedder, err := embedding.NewFromConfig(&cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	vdb, err := chromemdb.NewVectorDBManager(cfg.Store.Path, cfg.Store.Collection, cfg.Store.InMemory,
		cfg.Store.EncryptionKey, embedding.EmbeddingFunc(embedder))
	if err != nil {
		return nil, err
	}
	if _, err := vdb.GetOrCreateCollection(cfg.Store.Collection); err != nil {
		return nil, err
	}

	exportable := cfg.Store.InMemory && cfg.Store.EncryptionKey != ""
	if exportable {
		if _, err := os.Stat(vdb.FilePath()); err == nil {
			if err := vdb.Import(ctx); err != nil {
				return nil, err
			}
			log.Info().Str("file", vdb.FilePath()).Int("documents", vdb.Count()).Msg("Imported collection")
		}
	}

	b := &backend{
		store: vdb,
		reset: func(context.Context) error {
			if err := vdb.DeleteCollection(); err != nil {
				return err
			}
			_, err := vdb.GetOrCreateCollection(cfg.Store.Collection)
			return err
		},
		flush: func(ctx context.Context) error {
			if !exportable {
				return nil
			}
			return vdb.Export(ctx)
		},
		close: func() error { return nil },
	}
	return b, nil
}

func ingest(ctx context.Context, b *backend, filePath, sourceURL string, cfg *config.Config) error {
	docs, err := parser.ParseDocuments(filePath, sourceURL, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	if len(docs) == 0 {
		log.Warn().Str("file", filePath).Msg("No documents found")
		return nil
	}

	log.Info().Msgf("Adding %d documents to %s store", len(docs), cfg.Store.Backend)
	if err := b.store.StoreDocuments(ctx, docs); err != nil {
		return err
	}
	return b.flush(ctx)
}

func answerQuery(ctx context.Context, store rag.DocumentStore, cfg *config.Config, query string) {
	r := rag.NewRAG(store, cfg)
	response := r.Query(ctx, query)

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Source: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%v (documents used: %d)\n\n", response.Sources, response.CandidatesUsed)

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", response.Response)
}
