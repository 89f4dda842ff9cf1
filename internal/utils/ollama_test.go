package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateEmbedding(t *testing.T) {
	var gotPath, gotModel, gotPrompt string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer ts.Close()

	vec, err := GenerateEmbedding(ts.URL, "bge-m3", "video de gatitos")
	require.NoError(t, err)

	// host 和 model 用的是传入的参数，不是环境变量
	assert.Equal(t, "/api/embeddings", gotPath)
	assert.Equal(t, "bge-m3", gotModel)
	assert.Equal(t, "video de gatitos", gotPrompt)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestGenerateEmbeddingRequiresConfig(t *testing.T) {
	_, err := GenerateEmbedding("", "bge-m3", "texto")
	assert.Error(t, err)

	_, err = GenerateEmbedding("http://localhost:11434", "", "texto")
	assert.Error(t, err)
}

func TestGenerateEmbeddingBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := GenerateEmbedding(ts.URL, "bge-m3", "texto")
	assert.Error(t, err)
}
