package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"support-rag/internal/models"
)

const (
	BackendSupabase = "supabase"
	BackendChromem  = "chromem"
	BackendMemory   = "memory"

	DriverPgdriver = "pgdriver"
	DriverPostgres = "postgres"

	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	supabaseURLEnv = "SUPABASE_URL"
	supabaseKeyEnv = "SUPABASE_KEY"
	storeEnv       = "SUPPORT_RAG_STORE"
	embedKeyEnv    = "EMBED_LLM_KEY"
)

type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	EmbedLLM  LLMConfig       `yaml:"embed_llm"`
	RAG       RAGConfig       `yaml:"rag"`
	Responses ResponsesConfig `yaml:"responses"`
}

// DatabaseConfig describes the Supabase Postgres connection
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Debug  bool   `yaml:"debug"`
}

// StoreConfig selects the document store backend
type StoreConfig struct {
	Backend       string `yaml:"backend"`
	Path          string `yaml:"path"`
	Collection    string `yaml:"collection"`
	InMemory      bool   `yaml:"in_memory"`
	EncryptionKey string `yaml:"encryption_key"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Key      string `yaml:"key"`
	Model    string `yaml:"model"`
}

// RAGConfig tunes corpus search and answer synthesis
type RAGConfig struct {
	MaxCandidates        int      `yaml:"max_candidates"`
	TopDocuments         int      `yaml:"top_documents"`
	SentencesPerDocument int      `yaml:"sentences_per_document"`
	MaxSentences         int      `yaml:"max_sentences"`
	MinSentenceLength    int      `yaml:"min_sentence_length"`
	MinMatchWordLength   int      `yaml:"min_match_word_length"`
	MinKeywordLength     int      `yaml:"min_keyword_length"`
	MaxSources           int      `yaml:"max_sources"`
	StopWords            []string `yaml:"stop_words"`
	ChunkSize            int      `yaml:"chunk_size"`
	ChunkOverlap         int      `yaml:"chunk_overlap"`
}

// ResponsesConfig holds the canned replies used when the corpus has no answer
type ResponsesConfig struct {
	Prefix        string   `yaml:"prefix"`
	GreetingWords []string `yaml:"greeting_words"`
	Greetings     []string `yaml:"greetings"`
	Unknowns      []string `yaml:"unknowns"`
}

// Default returns the configuration matching the reference behaviour
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver: DriverPgdriver,
		},
		Store: StoreConfig{
			Backend:    BackendSupabase,
			Path:       "./chromemdb",
			Collection: "support_documents",
		},
		EmbedLLM: LLMConfig{
			Provider: ProviderOllama,
			BaseURL:  "http://localhost:11434",
			Model:    "nomic-embed-text",
		},
		RAG: RAGConfig{
			MaxCandidates:        models.DefaultMaxCandidates,
			TopDocuments:         models.DefaultTopDocuments,
			SentencesPerDocument: models.DefaultSentencesPerDocument,
			MaxSentences:         models.DefaultMaxSentences,
			MinSentenceLength:    models.DefaultMinSentenceLength,
			MinMatchWordLength:   models.DefaultMinMatchWordLength,
			MinKeywordLength:     models.DefaultMinKeywordLength,
			MaxSources:           models.DefaultMaxSources,
			StopWords:            append([]string(nil), models.DefaultStopWords...),
			ChunkSize:            models.DefaultChunkSize,
			ChunkOverlap:         models.DefaultChunkOverlap,
		},
		Responses: ResponsesConfig{
			Prefix:        models.ResponsePrefix,
			GreetingWords: append([]string(nil), models.DefaultGreetingWords...),
			Greetings:     append([]string(nil), models.DefaultGreetings...),
			Unknowns:      append([]string(nil), models.DefaultUnknowns...),
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, then applies env overrides
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(supabaseURLEnv); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(supabaseKeyEnv); v != "" {
		c.Database.Key = v
	}
	if v := os.Getenv(storeEnv); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv(embedKeyEnv); v != "" {
		c.EmbedLLM.Key = v
	}
}

// Normalize replaces zero or negative tunables with their defaults.
// Lists are left alone: an empty list is a valid choice.
func (c *Config) Normalize() {
	d := Default()
	fill := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&c.RAG.MaxCandidates, d.RAG.MaxCandidates)
	fill(&c.RAG.TopDocuments, d.RAG.TopDocuments)
	fill(&c.RAG.SentencesPerDocument, d.RAG.SentencesPerDocument)
	fill(&c.RAG.MaxSentences, d.RAG.MaxSentences)
	fill(&c.RAG.MinSentenceLength, d.RAG.MinSentenceLength)
	fill(&c.RAG.MinMatchWordLength, d.RAG.MinMatchWordLength)
	fill(&c.RAG.MinKeywordLength, d.RAG.MinKeywordLength)
	fill(&c.RAG.MaxSources, d.RAG.MaxSources)
	fill(&c.RAG.ChunkSize, d.RAG.ChunkSize)
	if c.RAG.ChunkOverlap < 0 {
		c.RAG.ChunkOverlap = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Responses.Prefix == "" {
		c.Responses.Prefix = d.Responses.Prefix
	}
	if c.Database.Driver == "" {
		c.Database.Driver = d.Database.Driver
	}
	if c.Store.Backend == "" {
		c.Store.Backend = d.Store.Backend
	}
	if c.Store.Collection == "" {
		c.Store.Collection = d.Store.Collection
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSupabase, BackendChromem, BackendMemory:
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}
	switch c.Database.Driver {
	case DriverPgdriver, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if len(c.Responses.Greetings) == 0 || len(c.Responses.Unknowns) == 0 {
		return fmt.Errorf("responses: greetings and unknowns must not be empty")
	}
	if c.Store.EncryptionKey != "" && len(c.Store.EncryptionKey) != 32 {
		return fmt.Errorf("store: encryption key must be 32 bytes, got %d", len(c.Store.EncryptionKey))
	}
	return nil
}
