package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/utils"
)

// RecommendService 基于 LLM 的情绪推荐服务
// 推荐和调优都是纯 prompt 包装：入参拼进提示词，出参按 JSON 解析
type RecommendService struct {
	apiKey    string
	modelName string

	// generate 可注入，测试时替换为固定返回
	generate func(prompt string, target interface{}) error
}

// NewRecommendService 创建推荐服务
func NewRecommendService(apiKey, modelName string) *RecommendService {
	s := &RecommendService{apiKey: apiKey, modelName: modelName}
	s.generate = func(prompt string, target interface{}) error {
		return utils.GenerateGeminiJSON(s.apiKey, s.modelName, prompt, target)
	}
	return s
}

// aiVideo LLM 返回的单条推荐
type aiVideo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// RecommendVideos 按情绪生成推荐列表
// history 为该用户的既往互动，空表示新用户。
// 模型失败原样返回错误，由调用方决定替换样例列表并标记错误状态
func (s *RecommendService) RecommendVideos(emotion model.Emotion, history []model.UserInteraction) ([]model.Video, error) {
	if emotion == "" {
		return nil, fmt.Errorf("情绪不能为空")
	}

	prompt := buildRecommendPrompt(emotion, history)

	var raw []aiVideo
	if err := s.generate(prompt, &raw); err != nil {
		return nil, fmt.Errorf("LLM 推荐失败: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("LLM 返回了空列表")
	}

	now := time.Now().Unix()
	videos := make([]model.Video, 0, len(raw))
	for i, v := range raw {
		videos = append(videos, model.Video{
			ID:          fmt.Sprintf("ai-%s-%d-%d", emotion, i, now),
			URL:         v.URL,
			Description: strings.TrimSpace(v.Title + " " + v.Description),
			RenderHint:  "ai",
		})
	}
	return videos, nil
}

func buildRecommendPrompt(emotion model.Emotion, history []model.UserInteraction) string {
	var b strings.Builder
	b.WriteString("Eres un recomendador de videos cortos para una app de bienestar emocional.\n")
	fmt.Fprintf(&b, "El usuario se siente: %s.\n", emotion)
	if len(history) > 0 {
		b.WriteString("Historial de interacciones (videoId:tipo): ")
		b.WriteString(historyString(history))
		b.WriteString("\n")
		b.WriteString("Evita contenido parecido a lo reportado y prioriza lo parecido a lo que marcó con like o save.\n")
	} else {
		b.WriteString("Es un usuario nuevo sin historial.\n")
	}
	b.WriteString("Devuelve SOLO un arreglo JSON de 5 objetos con campos title, description y url ")
	b.WriteString("(url de un video corto de YouTube real y apropiado). Sin texto adicional.")
	return b.String()
}

// historyString 互动历史压缩成 "videoId:type, videoId:type" 形式
func historyString(history []model.UserInteraction) string {
	parts := make([]string, 0, len(history))
	for _, i := range history {
		parts = append(parts, fmt.Sprintf("%s:%s", i.VideoID, i.Type))
	}
	return strings.Join(parts, ", ")
}

// refinementResult LLM 调优的返回结构
type refinementResult struct {
	Recommendations []string `json:"recommendations"`
	Reasoning       string   `json:"reasoning"`
}

// ImproveRecommendations 根据单次互动请求 LLM 给出调优建议
// 结果只记录不直接改当前列表，由下一次刷新消费
func (s *RecommendService) ImproveRecommendations(userID int, emotion model.Emotion, videoID string, t model.InteractionType, previous []string) (*model.RefinementLog, error) {
	if emotion == "" {
		return nil, fmt.Errorf("情绪不能为空")
	}
	if !model.ValidInteractionType(string(t)) {
		return nil, fmt.Errorf("互动类型无效: %q", t)
	}

	var b strings.Builder
	b.WriteString("Eres un asesor de recomendaciones de videos cortos.\n")
	fmt.Fprintf(&b, "El usuario se siente %s y acaba de hacer %q sobre el video %s.\n", emotion, t, videoID)
	if len(previous) > 0 {
		fmt.Fprintf(&b, "Recomendaciones previas: %s.\n", strings.Join(previous, ", "))
	}
	b.WriteString("Devuelve SOLO un objeto JSON con recommendations (arreglo de ids o temas sugeridos) ")
	b.WriteString("y reasoning (una frase en español explicando el ajuste).")

	var result refinementResult
	if err := s.generate(b.String(), &result); err != nil {
		return nil, fmt.Errorf("LLM 调优失败: %w", err)
	}

	return &model.RefinementLog{
		UserID:          userID,
		Emotion:         emotion,
		VideoID:         videoID,
		Type:            t,
		Recommendations: pq.StringArray(result.Recommendations),
		Reasoning:       result.Reasoning,
		CreatedAt:       time.Now(),
	}, nil
}

// FallbackVideos LLM 不可用时的内置样例列表
func FallbackVideos(emotion model.Emotion) []model.Video {
	now := time.Now().Unix()
	samples := []aiVideo{
		{Title: "Respira conmigo", Description: "Ejercicio de respiración guiada de un minuto"},
		{Title: "Gatitos jugando", Description: "Video corto de gatitos para levantar el ánimo"},
		{Title: "Atardecer en la playa", Description: "Paisaje relajante con sonido de olas"},
		{Title: "Dato curioso del día", Description: "Un dato breve para distraer la mente"},
		{Title: "Estiramiento rápido", Description: "Rutina de estiramiento de 60 segundos"},
	}
	videos := make([]model.Video, 0, len(samples))
	for i, v := range samples {
		videos = append(videos, model.Video{
			ID:          fmt.Sprintf("ai-%s-%d-%d", emotion, i, now),
			Description: v.Title + " " + v.Description,
			RenderHint:  "fallback",
		})
	}
	return videos
}
