package models

import "time"

// Metadata holds the provenance of an ingested document. Every field is optional.
type Metadata struct {
	SourceURL   string     `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" yaml:"processed_at,omitempty"`
}

// Document is a unit of ingested text content
type Document struct {
	ID       string   `json:"id" yaml:"id"`
	Content  string   `json:"content" yaml:"content"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// ScoredCandidate is a document annotated with its similarity to the current query
type ScoredCandidate struct {
	Document   Document
	Similarity float64
}

// Answer is the result of answering a single chat message
type Answer struct {
	Query          string
	Response       string
	CandidatesUsed int
	Sources        []string
}
