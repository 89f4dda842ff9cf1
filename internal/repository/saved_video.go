package repository

import (
	"errors"
	"time"

	"github.com/user/myzend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavedVideoRepository 用户标记列表仓库（liked/saved/disliked）
type SavedVideoRepository struct {
	db *gorm.DB
}

func NewSavedVideoRepository(db *gorm.DB) *SavedVideoRepository {
	return &SavedVideoRepository{db: db}
}

// Mark 将视频加入指定列表（重复标记幂等）
func (r *SavedVideoRepository) Mark(userID int, list model.MarkList, video model.Video) error {
	record := &model.SavedVideo{
		UserID:       userID,
		VideoID:      video.ID,
		List:         list,
		URL:          video.URL,
		Description:  video.Description,
		ThumbnailURL: video.ThumbnailURL,
		CreatedAt:    time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
}

// Unmark 将视频移出指定列表
func (r *SavedVideoRepository) Unmark(userID int, list model.MarkList, videoID string) error {
	return r.db.Where("user_id = ? AND list = ? AND video_id = ?", userID, list, videoID).
		Delete(&model.SavedVideo{}).Error
}

// IsMarked 检查视频是否在指定列表中
func (r *SavedVideoRepository) IsMarked(userID int, list model.MarkList, videoID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.SavedVideo{}).
		Where("user_id = ? AND list = ? AND video_id = ?", userID, list, videoID).
		Count(&count).Error
	return count > 0, err
}

// ListByUser 获取用户指定列表（最新在前）
func (r *SavedVideoRepository) ListByUser(userID int, list model.MarkList, limit, offset int) ([]*model.SavedVideo, error) {
	var records []*model.SavedVideo
	q := r.db.Where("user_id = ? AND list = ?", userID, list).
		Order("created_at DESC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}

// CountByUser 统计用户指定列表数量
func (r *SavedVideoRepository) CountByUser(userID int, list model.MarkList) (int, error) {
	var count int64
	err := r.db.Model(&model.SavedVideo{}).
		Where("user_id = ? AND list = ?", userID, list).
		Count(&count).Error
	return int(count), err
}

// FindByVideoID 在指定列表中查找某个视频
func (r *SavedVideoRepository) FindByVideoID(userID int, list model.MarkList, videoID string) (*model.SavedVideo, error) {
	var record model.SavedVideo
	err := r.db.Where("user_id = ? AND list = ? AND video_id = ?", userID, list, videoID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
