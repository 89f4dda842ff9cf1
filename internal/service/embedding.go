package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/repository"
	"github.com/user/myzend/internal/utils"
)

// EmbeddingService 视频向量索引
// 收藏时把视频描述向量化入库，收藏页据此展示"相关收藏"
type EmbeddingService struct {
	repo  *repository.VideoEmbeddingRepository
	host  string
	model string
}

// NewEmbeddingService 创建向量索引服务，host/model 指向 Ollama 实例
func NewEmbeddingService(repo *repository.VideoEmbeddingRepository, host, model string) *EmbeddingService {
	return &EmbeddingService{repo: repo, host: host, model: model}
}

// IndexVideo 为视频建立向量索引，已有索引则跳过
func (s *EmbeddingService) IndexVideo(video model.Video) error {
	if video.ID == "" || video.Description == "" {
		return fmt.Errorf("视频缺少 ID 或描述，无法索引")
	}
	has, err := s.repo.Has(video.ID)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	vec, err := utils.GenerateEmbedding(s.host, s.model, video.Description)
	if err != nil {
		return fmt.Errorf("生成向量失败: %w", err)
	}
	return s.repo.Upsert(video.ID, video.Description, vec)
}

// IndexAsync 异步索引，失败只记日志（向量只是增强功能，不阻塞收藏）
func (s *EmbeddingService) IndexAsync(video model.Video) {
	go func() {
		if err := s.IndexVideo(video); err != nil {
			log.Printf("索引视频 %s 失败: %v", video.ID, err)
		}
	}()
}

// RelatedVideos 按向量相似度查找相关视频
func (s *EmbeddingService) RelatedVideos(videoID string, limit int) ([]model.Video, error) {
	rows, err := s.repo.FindSimilar(videoID, limit)
	if err != nil {
		return nil, err
	}
	videos := make([]model.Video, 0, len(rows))
	for _, r := range rows {
		v := model.Video{
			ID:          r.VideoID,
			Description: r.Description,
		}
		// ai- 前缀的是 LLM 生成条目，没有真实播放地址
		if !strings.HasPrefix(r.VideoID, "ai-") {
			v.URL = utils.ShortsURL(r.VideoID)
			v.ThumbnailURL = utils.ShortsThumbnailURL(r.VideoID)
		}
		videos = append(videos, v)
	}
	return videos, nil
}
