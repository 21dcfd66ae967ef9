package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"support-rag/internal/config"
	"support-rag/internal/helper"
	"support-rag/internal/models"
)

// documentFile is the layout of .yaml/.yml/.json corpus files
type documentFile struct {
	Documents []models.Document `yaml:"documents"`
}

type ParserConfig struct {
	Config    *config.Config
	SourceURL string
	now       func() time.Time
}

// ParseDocuments loads the corpus documents in filePath. sourceURL is
// attached to documents cut from plain text and markdown files.
func ParseDocuments(filePath, sourceURL string, cfg *config.Config) ([]models.Document, error) {
	// if config is nil, use default values
	if cfg == nil {
		cfg = config.Default()
	}
	c := *cfg
	c.Normalize()

	p := ParserConfig{
		Config:    &c,
		SourceURL: sourceURL,
		now:       time.Now,
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".yaml", ".yml", ".json":
		return parseDocumentList(filePath)
	case ".txt":
		return p.parseText(filePath)
	case ".md", ".markdown":
		return p.parseMarkdown(filePath)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", ext)
	}
}

// JSON is a subset of YAML, so both go through yaml.v3
func parseDocumentList(filePath string) ([]models.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var file documentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}

	var docs []models.Document
	for _, doc := range file.Documents {
		doc.Content = strings.TrimSpace(doc.Content)
		if doc.Content == "" {
			continue
		}
		if doc.ID == "" {
			id, err := helper.GenerateUUID()
			if err != nil {
				return nil, err
			}
			doc.ID = id
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (p *ParserConfig) parseText(filePath string) ([]models.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return p.getDocuments(filepath.Base(filePath), string(data)), nil
}

func (p *ParserConfig) parseMarkdown(filePath string) ([]models.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	content, err := markdownToText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown %s: %w", filePath, err)
	}
	return p.getDocuments(filepath.Base(filePath), content), nil
}

// markdownToText walks the goldmark AST and keeps only the text, one line per block
func markdownToText(source []byte) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := md.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// chunk content into chunks with maxChars and overlapChars
func chunkContent(content string, maxChars, overlapChars int) []string {
	// Handle edge cases
	if maxChars <= 0 {
		return nil
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars / 2
	}

	runes := []rune(strings.TrimSpace(content))
	contentLen := len(runes)
	if contentLen == 0 {
		return nil
	}

	// If content is shorter than maxChars, return it as a single chunk
	if contentLen <= maxChars {
		return []string{string(runes)}
	}

	var chunks []string
	start := 0
	for start < contentLen {
		end := min(start+maxChars, contentLen)

		// Find a clean break point within the last 10% of the chunk
		if end < contentLen {
			lookBack := min(maxChars/10, end-start)
			for i := end - 1; i >= end-lookBack && i > start; i-- {
				if runes[i] == ' ' || runes[i] == '\n' || runes[i] == '.' {
					end = i + 1
					break
				}
			}
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= contentLen {
			break
		}

		// Move start forward, accounting for overlap
		next := end - overlapChars
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// get documents from content, one per chunk
func (p *ParserConfig) getDocuments(name, content string) []models.Document {
	chunks := chunkContent(content, p.Config.RAG.ChunkSize, p.Config.RAG.ChunkOverlap)
	processedAt := p.now().UTC()

	docs := make([]models.Document, 0, len(chunks))
	for i, chunk := range chunks {
		title := name
		if len(chunks) > 1 {
			title = fmt.Sprintf("%s (part %d)", name, i+1)
		}
		docs = append(docs, models.Document{
			ID:      helper.ChunkID(p.SourceURL+"|"+name, i),
			Content: chunk,
			Metadata: models.Metadata{
				SourceURL:   p.SourceURL,
				Title:       title,
				ProcessedAt: &processedAt,
			},
		})
	}
	return docs
}
