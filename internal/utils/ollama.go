package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// embeddingRequest Ollama embedding API 请求结构
type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embeddingResponse Ollama embedding API 响应结构
type embeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// ollamaClient 复用连接，收藏高峰时向量化请求会成批出现
var ollamaClient = &http.Client{Timeout: 30 * time.Second}

// GenerateEmbedding 调用 Ollama embedding API 把文本向量化
// host 与 model 由配置层传入，这里不读环境变量
func GenerateEmbedding(host, model, text string) ([]float32, error) {
	if host == "" || model == "" {
		return nil, fmt.Errorf("缺少 Ollama host 或 model 配置")
	}

	jsonData, err := json.Marshal(embeddingRequest{Model: model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %v", err)
	}

	resp, err := ollamaClient.Post(fmt.Sprintf("%s/api/embeddings", host), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("post request to ollama failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned error status: %d", resp.StatusCode)
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response failed: %v", err)
	}

	return result.Embedding, nil
}
