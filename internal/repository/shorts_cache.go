package repository

import (
	"database/sql"
	"time"
)

// ShortsCacheEntry Shorts 抓取缓存条目
type ShortsCacheEntry struct {
	ID            int
	ChannelHandle string
	ResultJSON    string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// ShortsCacheRepository 频道 Shorts 抓取结果的落库缓存
// 内存 LRU 之外的第二层：进程重启后仍可避免对同一频道的重复抓取
type ShortsCacheRepository struct {
	db *sql.DB
}

func NewShortsCacheRepository(db *sql.DB) *ShortsCacheRepository {
	return &ShortsCacheRepository{db: db}
}

// Find 查找缓存（未过期）
func (r *ShortsCacheRepository) Find(channelHandle string) (*ShortsCacheEntry, error) {
	entry := &ShortsCacheEntry{}
	err := r.db.QueryRow(`
		SELECT id, channel_handle, result_json, created_at, expires_at
		FROM shorts_cache
		WHERE channel_handle = $1 AND expires_at > NOW()
		LIMIT 1
	`, channelHandle).Scan(
		&entry.ID, &entry.ChannelHandle, &entry.ResultJSON,
		&entry.CreatedAt, &entry.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// FindWithExpiry 查找缓存，即使过期也返回，用于"先返回旧数据"策略
func (r *ShortsCacheRepository) FindWithExpiry(channelHandle string) (*ShortsCacheEntry, bool, error) {
	entry := &ShortsCacheEntry{}
	err := r.db.QueryRow(`
		SELECT id, channel_handle, result_json, created_at, expires_at
		FROM shorts_cache
		WHERE channel_handle = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, channelHandle).Scan(
		&entry.ID, &entry.ChannelHandle, &entry.ResultJSON,
		&entry.CreatedAt, &entry.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	isExpired := entry.ExpiresAt.Before(time.Now())
	return entry, isExpired, nil
}

// Upsert 创建或更新缓存（按频道唯一）
func (r *ShortsCacheRepository) Upsert(channelHandle, resultJSON string, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)

	_, err := r.db.Exec(`
		INSERT INTO shorts_cache (channel_handle, result_json, created_at, expires_at)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (channel_handle) DO UPDATE SET
			result_json = EXCLUDED.result_json,
			expires_at = EXCLUDED.expires_at
	`, channelHandle, resultJSON, expiresAt)

	return err
}

// CleanExpired 清理过期缓存
func (r *ShortsCacheRepository) CleanExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM shorts_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
