package model

import (
	"time"

	"github.com/lib/pq"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email" gorm:"uniqueIndex"`
	Name         string    `json:"name" db:"name"`
	AvatarURL    string    `json:"avatar_url,omitempty" db:"avatar_url"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SessionUser 专门用于 Session 存储的用户信息结构
type SessionUser struct {
	ID        int
	Email     string
	Name      string
	AvatarURL string
}

// Video 一条推荐视频
// AI 推荐的占位视频 URL 为 "ai_placeholder_url"，Shorts 视频为完整播放链接
type Video struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	RenderHint   string `json:"render_hint,omitempty"`
}

// InteractionType 互动类型
type InteractionType string

const (
	InteractionLike   InteractionType = "like"
	InteractionSave   InteractionType = "save"
	InteractionReport InteractionType = "report"
)

// ValidInteractionType 校验互动类型
func ValidInteractionType(t string) bool {
	switch InteractionType(t) {
	case InteractionLike, InteractionSave, InteractionReport:
		return true
	}
	return false
}

// UserInteraction 互动日志（仅追加，落库后不再修改）
type UserInteraction struct {
	ID             int             `json:"id" db:"id"`
	UserID         int             `json:"user_id" db:"user_id" gorm:"index"`
	Email          string          `json:"email" db:"email" gorm:"index"`
	VideoID        string          `json:"video_id" db:"video_id"`
	VideoURL       string          `json:"video_url" db:"video_url"`
	VideoTitle     string          `json:"video_title" db:"video_title"`
	VideoThumbnail string          `json:"video_thumbnail" db:"video_thumbnail"`
	Type           InteractionType `json:"interaction_type" db:"type"`
	Emotion        Emotion         `json:"emotion" db:"emotion"`
	CreatedAt      time.Time       `json:"timestamp" db:"created_at" gorm:"index"`
}

// Video 从互动记录还原视频条目（冗余字段足够渲染收藏卡片）
func (i *UserInteraction) Video() Video {
	return Video{
		ID:           i.VideoID,
		URL:          i.VideoURL,
		Description:  i.VideoTitle,
		ThumbnailURL: i.VideoThumbnail,
	}
}

// EmotionLog 情绪选择日志
type EmotionLog struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id" gorm:"index"`
	Email     string    `json:"email" db:"email" gorm:"index"`
	Emotion   Emotion   `json:"emotion" db:"emotion"`
	CreatedAt time.Time `json:"timestamp" db:"created_at" gorm:"index"`
}

// MarkList 衍生集合类型（喜欢/收藏/不喜欢三个集合互相独立）
type MarkList string

const (
	MarkLiked    MarkList = "liked"
	MarkSaved    MarkList = "saved"
	MarkDisliked MarkList = "disliked"
)

// MarkForInteraction 互动类型对应的衍生集合（report 归入不喜欢）
func MarkForInteraction(t InteractionType) (MarkList, bool) {
	switch t {
	case InteractionLike:
		return MarkLiked, true
	case InteractionSave:
		return MarkSaved, true
	case InteractionReport:
		return MarkDisliked, true
	}
	return "", false
}

// SavedVideo 用户标记的视频（liked/saved/disliked 三个列表共用一张表）
type SavedVideo struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_user_video_list"`
	VideoID      string    `json:"video_id" db:"video_id" gorm:"uniqueIndex:idx_user_video_list"`
	List         MarkList  `json:"list" db:"list" gorm:"uniqueIndex:idx_user_video_list"`
	URL          string    `json:"url" db:"url"`
	Description  string    `json:"description" db:"description"`
	ThumbnailURL string    `json:"thumbnail_url" db:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Video 转换为推荐条目（收藏页/深链定位时复用）
func (s *SavedVideo) Video() Video {
	return Video{
		ID:           s.VideoID,
		URL:          s.URL,
		Description:  s.Description,
		ThumbnailURL: s.ThumbnailURL,
	}
}

// RefinementLog 推荐修正记录
// 修正结果不直接重排当前信息流（避免打断自动滚动），但完整落库可查
type RefinementLog struct {
	ID              int             `json:"id" db:"id"`
	UserID          int             `json:"user_id" db:"user_id"`
	VideoID         string          `json:"video_id" db:"video_id"`
	Type            InteractionType `json:"interaction_type" db:"type"`
	Emotion         Emotion         `json:"emotion" db:"emotion"`
	Recommendations pq.StringArray  `json:"updated_recommendations" db:"recommendations" gorm:"type:text[]"`
	Reasoning       string          `json:"reasoning" db:"reasoning"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at" gorm:"index"`
}

// EmotionTrend 情绪统计（个人档案页）
type EmotionTrend struct {
	Emotion      Emotion   `json:"emotion" db:"emotion"`
	Count        int       `json:"count" db:"count"`
	LastLoggedAt time.Time `json:"last_logged_at" db:"last_logged_at"`
}
