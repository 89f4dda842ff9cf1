package repository

import (
	"fmt"

	"github.com/user/myzend/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	// 向量扩展（嵌入表依赖）
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("创建 vector 扩展失败: %w", err)
	}

	// 自动迁移
	if err := db.AutoMigrate(
		&model.User{},
		&model.UserInteraction{},
		&model.EmotionLog{},
		&model.SavedVideo{},
		&model.RefinementLog{},
		&model.VideoEmbedding{},
	); err != nil {
		return nil, fmt.Errorf("自动迁移失败: %w", err)
	}

	// Shorts 抓取缓存表（走 database/sql，AutoMigrate 不覆盖）
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS shorts_cache (
			id SERIAL PRIMARY KEY,
			channel_handle TEXT NOT NULL,
			result_json TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			UNIQUE (channel_handle)
		)
	`).Error; err != nil {
		return nil, fmt.Errorf("创建 shorts_cache 表失败: %w", err)
	}

	return db, nil
}

// Repositories 仓库集合
type Repositories struct {
	DB          *gorm.DB
	User        *UserRepository
	Interaction *InteractionRepository
	EmotionLog  *EmotionLogRepository
	SavedVideo  *SavedVideoRepository
	Refinement  *RefinementLogRepository
	Embedding   *VideoEmbeddingRepository
	ShortsCache *ShortsCacheRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	sqlDB, _ := db.DB()
	return &Repositories{
		DB:          db,
		User:        NewUserRepository(db),
		Interaction: NewInteractionRepository(db),
		EmotionLog:  NewEmotionLogRepository(db),
		SavedVideo:  NewSavedVideoRepository(db),
		Refinement:  NewRefinementLogRepository(db),
		Embedding:   NewVideoEmbeddingRepository(db),
		ShortsCache: NewShortsCacheRepository(sqlDB),
	}
}
