package repository

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/user/myzend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoEmbeddingRepository struct {
	db *gorm.DB
}

func NewVideoEmbeddingRepository(db *gorm.DB) *VideoEmbeddingRepository {
	return &VideoEmbeddingRepository{db: db}
}

// Upsert 写入或更新视频描述向量
func (r *VideoEmbeddingRepository) Upsert(videoID, description string, vec []float32) error {
	v := pgvector.NewVector(vec)
	record := &model.VideoEmbedding{
		VideoID:     videoID,
		Description: description,
		Embedding:   &v,
		UpdatedAt:   time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "embedding", "updated_at"}),
	}).Create(record).Error
}

// Has 检查视频是否已有向量
func (r *VideoEmbeddingRepository) Has(videoID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.VideoEmbedding{}).Where("video_id = ?", videoID).Count(&count).Error
	return count > 0, err
}

// FindSimilar 按余弦距离查找与指定视频最相近的其他视频
func (r *VideoEmbeddingRepository) FindSimilar(videoID string, limit int) ([]*model.VideoEmbedding, error) {
	var results []*model.VideoEmbedding
	err := r.db.Raw(`
		SELECT v.id, v.video_id, v.description, v.embedding, v.updated_at
		FROM video_embeddings v, video_embeddings src
		WHERE src.video_id = $1
		  AND v.video_id <> src.video_id
		  AND v.embedding IS NOT NULL
		ORDER BY v.embedding <=> src.embedding
		LIMIT $2
	`, videoID, limit).Scan(&results).Error
	return results, err
}

// DeleteStale 清理超过指定天数未更新的向量
func (r *VideoEmbeddingRepository) DeleteStale(days int) (int64, error) {
	result := r.db.Exec(`
		DELETE FROM video_embeddings
		WHERE updated_at < NOW() - INTERVAL '1 day' * $1
	`, days)
	return result.RowsAffected, result.Error
}
