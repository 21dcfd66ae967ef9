package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"support-rag/internal/config"
)

// fakeEmbedder implements embeddings.Embedder for testing.
type fakeEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	return f.vec, f.err
}

func TestEmbeddingFunc_Delegates(t *testing.T) {
	fake := &fakeEmbedder{vec: []float32{0.6, 0.8}}
	fn := EmbeddingFunc(fake)

	vec, err := fn(context.Background(), "apply admission")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, vec)
	assert.Equal(t, []string{"apply admission"}, fake.texts)
}

func TestEmbeddingFunc_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := EmbeddingFunc(&fakeEmbedder{err: boom})(context.Background(), "x")
	assert.ErrorIs(t, err, boom)

	_, err = EmbeddingFunc(&fakeEmbedder{})(context.Background(), "x")
	assert.Error(t, err)
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	_, err := NewFromConfig(&config.LLMConfig{Provider: "cohere"})
	assert.Error(t, err)
}

func TestNewFromConfig_Ollama(t *testing.T) {
	// the client is created lazily, no server is contacted
	e, err := NewFromConfig(&config.LLMConfig{
		Provider: config.ProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "nomic-embed-text",
	})
	require.NoError(t, err)
	assert.NotNil(t, e)
}
