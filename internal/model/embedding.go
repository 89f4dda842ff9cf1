package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// VideoEmbedding 视频描述向量（用于收藏页"相关视频"推荐）
type VideoEmbedding struct {
	ID          int              `json:"id" db:"id"`
	VideoID     string           `json:"video_id" db:"video_id" gorm:"unique"`
	Description string           `json:"description" db:"description"`
	Embedding   *pgvector.Vector `json:"embedding" db:"embedding" gorm:"type:vector(768)"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at" gorm:"index"`
}
