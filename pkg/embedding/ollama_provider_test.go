package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerateNormalizesVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "some clinical note", req.Prompt)

		_, _ = w.Write([]byte(`{"embedding": [3.0, 4.0]}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "")
	assert.Equal(t, "nomic-embed-text", provider.Model())

	result, err := provider.Generate(context.Background(), "some clinical note", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Len(t, result.Values, 2)

	// 3-4-5 triangle scaled to unit length.
	assert.InDelta(t, 0.6, result.Values[0], 1e-6)
	assert.InDelta(t, 0.8, result.Values[1], 1e-6)

	var norm float64
	for _, v := range result.Values {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
	assert.Equal(t, "nomic-embed-text", result.Model)
}

func TestOllamaGenerateSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "missing-model")
	_, err := provider.Generate(context.Background(), "text", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestNormalizeVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, normalizeVector(zero), "zero vector passes through untouched")

	unit := normalizeVector([]float32{10, 0, 0})
	assert.InDelta(t, 1.0, unit[0], 1e-6)
	assert.InDelta(t, 0.0, unit[1], 1e-6)
}
