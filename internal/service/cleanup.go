package service

import (
	"log"
	"time"

	"github.com/user/myzend/internal/repository"
)

// CleanupService 清理服务
type CleanupService struct {
	repos *repository.Repositories
}

// NewCleanupService 创建清理服务
func NewCleanupService(repos *repository.Repositories) *CleanupService {
	return &CleanupService{repos: repos}
}

// Start 启动定时清理任务
func (s *CleanupService) Start() {
	ticker := time.NewTicker(24 * time.Hour)

	// 启动时先运行一次
	go s.runCleanup()

	go func() {
		for range ticker.C {
			s.runCleanup()
		}
	}()
}

func (s *CleanupService) runCleanup() {
	log.Println("[CleanupService] 开始清理过期数据...")

	// 1. 清理过期的 Shorts 抓取缓存
	expired, err := s.repos.ShortsCache.CleanExpired()
	if err != nil {
		log.Printf("[CleanupService] 清理 Shorts 缓存失败: %v", err)
	} else if expired > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期 Shorts 缓存", expired)
	}

	// 2. 清理 90 天前的调优记录
	refinements, err := s.repos.Refinement.DeleteOld(90)
	if err != nil {
		log.Printf("[CleanupService] 清理调优记录失败: %v", err)
	} else if refinements > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期调优记录", refinements)
	}

	// 3. 清理 180 天未更新的视频向量
	embeddings, err := s.repos.Embedding.DeleteStale(180)
	if err != nil {
		log.Printf("[CleanupService] 清理视频向量失败: %v", err)
	} else if embeddings > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期视频向量", embeddings)
	}

	// 4. 清理一年前的情绪日志
	emotions, err := s.repos.EmotionLog.DeleteOldLogs(365)
	if err != nil {
		log.Printf("[CleanupService] 清理情绪日志失败: %v", err)
	} else if emotions > 0 {
		log.Printf("[CleanupService] 已清理 %d 条过期情绪日志", emotions)
	}
}
