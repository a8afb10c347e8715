package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderDefaults(t *testing.T) {
	p, err := NewProvider(nil)
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", p.config.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", p.config.ChatModel)
	assert.Equal(t, 3, p.config.MaxRetries)
}

func TestNewProviderPartialConfig(t *testing.T) {
	p, err := NewProvider(&Config{APIKey: "k", ChatModel: "gpt-4"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", p.config.ChatModel)
	assert.Equal(t, "text-embedding-3-small", p.config.EmbeddingModel)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", maxEmbeddingInputLen+100)
	assert.Len(t, truncate(long, maxEmbeddingInputLen), maxEmbeddingInputLen)
	assert.Equal(t, "short", truncate("short", maxEmbeddingInputLen))
}
