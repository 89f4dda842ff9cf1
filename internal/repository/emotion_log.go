package repository

import (
	"fmt"
	"time"

	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/utils"
	"gorm.io/gorm"
)

type EmotionLogRepository struct {
	db *gorm.DB
}

func NewEmotionLogRepository(db *gorm.DB) *EmotionLogRepository {
	return &EmotionLogRepository{db: db}
}

// Log 记录一次情绪选择
func (r *EmotionLogRepository) Log(userID int, email string, emotion model.Emotion) error {
	entry := &model.EmotionLog{
		UserID:    userID,
		Email:     email,
		Emotion:   emotion,
		CreatedAt: time.Now(),
	}
	return r.db.Create(entry).Error
}

// ListByEmail 获取用户情绪历史（最新在前）
func (r *EmotionLogRepository) ListByEmail(email string, limit int) ([]*model.EmotionLog, error) {
	var logs []*model.EmotionLog
	q := r.db.Where("email = ?", email).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

// GetTrends 统计用户各情绪出现次数（个人档案页，带缓存）
func (r *EmotionLogRepository) GetTrends(userID int, limit int) ([]*model.EmotionTrend, error) {
	// 1. 检查缓存
	cacheKey := fmt.Sprintf("emotion_trends:%d:%d", userID, limit)
	if cached, found := utils.CacheGet(cacheKey); found {
		if trends, ok := cached.([]*model.EmotionTrend); ok {
			return trends, nil
		}
	}

	// 2. 从数据库统计
	var trends []*model.EmotionTrend
	err := r.db.Raw(`
		SELECT emotion, COUNT(*) as count, MAX(created_at) as last_logged_at
		FROM emotion_logs
		WHERE user_id = $1
		GROUP BY emotion
		ORDER BY count DESC
		LIMIT $2
	`, userID, limit).Scan(&trends).Error
	if err != nil {
		return nil, err
	}

	// 3. 设置缓存
	utils.CacheSet(cacheKey, trends, 10*time.Minute)

	return trends, nil
}

// DeleteOldLogs 清理超过指定天数的情绪日志
func (r *EmotionLogRepository) DeleteOldLogs(days int) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM emotion_logs
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`, days)
	return result.RowsAffected, result.Error
}
