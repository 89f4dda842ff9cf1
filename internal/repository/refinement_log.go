package repository

import (
	"time"

	"github.com/user/myzend/internal/model"
	"gorm.io/gorm"
)

type RefinementLogRepository struct {
	db *gorm.DB
}

func NewRefinementLogRepository(db *gorm.DB) *RefinementLogRepository {
	return &RefinementLogRepository{db: db}
}

// Create 写入一条推荐修正记录
// recommendations 列为 text[]，保存模型返回的修正后视频 ID 快照
func (r *RefinementLogRepository) Create(l *model.RefinementLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	return r.db.Create(l).Error
}

// ListByUser 获取用户的修正记录（最新在前）
func (r *RefinementLogRepository) ListByUser(userID int, limit int) ([]*model.RefinementLog, error) {
	var logs []*model.RefinementLog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// Latest 获取用户最近一条修正记录
func (r *RefinementLogRepository) Latest(userID int) (*model.RefinementLog, error) {
	logs, err := r.ListByUser(userID, 1)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return logs[0], nil
}

// DeleteOld 清理超过指定天数的修正记录
func (r *RefinementLogRepository) DeleteOld(days int) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM refinement_logs
		WHERE created_at < NOW() - INTERVAL '1 day' * $1
	`, days)
	return result.RowsAffected, result.Error
}
