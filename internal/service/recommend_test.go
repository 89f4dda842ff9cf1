package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/myzend/internal/model"
)

// stubGenerate 注入固定的 LLM 返回
func stubGenerate(payload string) func(prompt string, target interface{}) error {
	return func(prompt string, target interface{}) error {
		return json.Unmarshal([]byte(payload), target)
	}
}

func TestRecommendVideosMapsLLMOutput(t *testing.T) {
	s := NewRecommendService("", "test-model")
	s.generate = stubGenerate(`[
		{"title": "Respira", "description": "un minuto de calma", "url": "https://youtube.com/shorts/abc"},
		{"title": "Gatitos", "description": "para sonreír", "url": "https://youtube.com/shorts/def"}
	]`)

	videos, err := s.RecommendVideos(model.EmotionTriste, nil)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	// ID 确定性：ai-<情绪>-<序号>-<时间戳>
	assert.True(t, strings.HasPrefix(videos[0].ID, "ai-Triste-0-"))
	assert.True(t, strings.HasPrefix(videos[1].ID, "ai-Triste-1-"))
	assert.Equal(t, "https://youtube.com/shorts/abc", videos[0].URL)
	assert.Contains(t, videos[0].Description, "Respira")
	assert.Equal(t, "ai", videos[0].RenderHint)
}

func TestRecommendVideosRequiresEmotion(t *testing.T) {
	s := NewRecommendService("", "test-model")
	_, err := s.RecommendVideos("", nil)
	assert.Error(t, err)
}

func TestRecommendVideosPropagatesGenerateError(t *testing.T) {
	s := NewRecommendService("", "test-model")
	s.generate = func(prompt string, target interface{}) error {
		return fmt.Errorf("cuota agotada")
	}

	// 失败必须原样抛给调用方，由调用方替换样例列表并标记错误
	videos, err := s.RecommendVideos(model.EmotionEstresado, nil)
	require.Error(t, err)
	assert.Nil(t, videos)
}

func TestRecommendVideosRejectsEmptyResult(t *testing.T) {
	s := NewRecommendService("", "test-model")
	s.generate = stubGenerate(`[]`)

	_, err := s.RecommendVideos(model.EmotionTriste, nil)
	assert.Error(t, err)
}

func TestFallbackVideos(t *testing.T) {
	videos := FallbackVideos(model.EmotionTriste)
	require.NotEmpty(t, videos)
	assert.True(t, strings.HasPrefix(videos[0].ID, "ai-Triste-0-"))
	assert.Equal(t, "fallback", videos[0].RenderHint)
}

func TestRecommendPromptIncludesHistory(t *testing.T) {
	history := []model.UserInteraction{
		{VideoID: "v1", Type: model.InteractionLike},
		{VideoID: "v2", Type: model.InteractionReport},
	}
	prompt := buildRecommendPrompt(model.EmotionTriste, history)

	assert.Contains(t, prompt, "Triste")
	assert.Contains(t, prompt, "v1:like, v2:report")

	// 无历史时标记为新用户
	fresh := buildRecommendPrompt(model.EmotionTriste, nil)
	assert.Contains(t, fresh, "usuario nuevo")
}

func TestImproveRecommendations(t *testing.T) {
	s := NewRecommendService("", "test-model")

	var gotPrompt string
	s.generate = func(prompt string, target interface{}) error {
		gotPrompt = prompt
		return json.Unmarshal([]byte(`{
			"recommendations": ["A", "B", "C"],
			"reasoning": "más videos de calma"
		}`), target)
	}

	result, err := s.ImproveRecommendations(1, model.EmotionTriste, "v1", model.InteractionLike, []string{"v1", "v2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, []string(result.Recommendations))
	assert.Equal(t, "más videos de calma", result.Reasoning)
	assert.Equal(t, model.EmotionTriste, result.Emotion)
	assert.Equal(t, model.InteractionLike, result.Type)

	// prompt 携带互动上下文与既往推荐
	assert.Contains(t, gotPrompt, "Triste")
	assert.Contains(t, gotPrompt, "v1, v2")
}

func TestImproveRecommendationsValidatesInput(t *testing.T) {
	s := NewRecommendService("", "test-model")

	_, err := s.ImproveRecommendations(1, "", "v1", model.InteractionLike, nil)
	assert.Error(t, err)

	_, err = s.ImproveRecommendations(1, model.EmotionTriste, "v1", "applaud", nil)
	assert.Error(t, err)
}

func TestHistoryString(t *testing.T) {
	assert.Empty(t, historyString(nil))
	out := historyString([]model.UserInteraction{
		{VideoID: "a", Type: model.InteractionSave},
	})
	assert.Equal(t, "a:save", out)
}
