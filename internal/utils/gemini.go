package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GeminiRequest Gemini API 请求结构
type GeminiRequest struct {
	Contents         []GeminiContent         `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiGenerationConfig 生成配置（结构化输出时要求 JSON）
type GeminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

// GeminiResponse Gemini API 响应结构
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateGeminiText 调用 Gemini API 生成自由文本
func GenerateGeminiText(apiKey, model, prompt string) (string, error) {
	return callGemini(apiKey, model, prompt, nil)
}

// GenerateGeminiJSON 调用 Gemini API 并把 JSON 输出解析到 target
// 模型偶尔会包一层 Markdown 代码块，解析前先剥掉
func GenerateGeminiJSON(apiKey, model, prompt string, target interface{}) error {
	text, err := callGemini(apiKey, model, prompt, &GeminiGenerationConfig{
		ResponseMimeType: "application/json",
	})
	if err != nil {
		return err
	}

	cleaned := stripCodeFence(text)
	if err := json.Unmarshal([]byte(cleaned), target); err != nil {
		return fmt.Errorf("parse gemini json failed: %v", err)
	}
	return nil
}

func callGemini(apiKey, model, prompt string, cfg *GeminiGenerationConfig) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY is not set")
	}

	// LLM 生成内容较慢，超时放宽到 30 秒
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, apiKey)

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{
				Parts: []GeminiPart{
					{Text: prompt},
				},
			},
		},
		GenerationConfig: cfg,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request failed: %v", err)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("post request to gemini failed: %v", err)
	}
	defer resp.Body.Close()

	var result GeminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response failed: %v", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("gemini api error: %s", result.Error.Message)
	}

	if len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
		return result.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("gemini returned no content")
}

// stripCodeFence 剥掉 ```json ... ``` 包装
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
