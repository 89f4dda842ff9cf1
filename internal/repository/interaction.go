package repository

import (
	"time"

	"github.com/user/myzend/internal/model"
	"gorm.io/gorm"
)

// InteractionRepository 互动日志仓库
// 日志仅追加：这里刻意不提供 Update/Delete
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// Append 追加一条互动记录
func (r *InteractionRepository) Append(i *model.UserInteraction) error {
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now()
	}
	return r.db.Create(i).Error
}

// ListByEmail 获取用户的全部互动记录（时间正序，与追加顺序一致）
func (r *InteractionRepository) ListByEmail(email string) ([]*model.UserInteraction, error) {
	var interactions []*model.UserInteraction
	err := r.db.Where("email = ?", email).
		Order("created_at ASC, id ASC").
		Find(&interactions).Error
	return interactions, err
}

// ListByEmailAndType 按互动类型过滤
func (r *InteractionRepository) ListByEmailAndType(email string, t model.InteractionType) ([]*model.UserInteraction, error) {
	var interactions []*model.UserInteraction
	err := r.db.Where("email = ? AND type = ?", email, t).
		Order("created_at ASC, id ASC").
		Find(&interactions).Error
	return interactions, err
}

// CountByUser 统计用户互动数量
func (r *InteractionRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.UserInteraction{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// CountByUserAndType 按类型统计（个人档案页）
func (r *InteractionRepository) CountByUserAndType(userID int, t model.InteractionType) (int, error) {
	var count int64
	err := r.db.Model(&model.UserInteraction{}).
		Where("user_id = ? AND type = ?", userID, t).
		Count(&count).Error
	return int(count), err
}
