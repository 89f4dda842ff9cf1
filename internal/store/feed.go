package store

import (
	"fmt"

	"github.com/user/myzend/internal/feed"
	"github.com/user/myzend/internal/model"
)

// feed.Feed 自身不加锁，所有访问都经过 Store 的互斥锁

// FeedSnapshot 某一时刻的播放状态
type FeedSnapshot struct {
	Videos   []model.Video
	Index    int
	Mode     feed.Mode
	Narrowed bool
}

// Current 当前视频快照
func (s *Store) Current() (model.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Current()
}

// Snapshot 当前播放状态快照
func (s *Store) Snapshot() FeedSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FeedSnapshot{
		Videos:   s.feed.Videos(),
		Index:    s.feed.Index(),
		Mode:     s.feed.Mode(),
		Narrowed: s.feed.Narrowed(),
	}
}

// AdvanceFeed 以指定驱动方推进播放位置
func (s *Store) AdvanceFeed(driver feed.Mode) (model.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.Advance(driver)
	return s.feed.Current()
}

// SetFeedMode 切换推进模式
func (s *Store) SetFeedMode(m feed.Mode) error {
	if !feed.ValidMode(string(m)) {
		return fmt.Errorf("modo inválido: %q", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.SetMode(m)
	return nil
}

// SetFeedIndex 手动跳到指定位置（仅手动模式有效）
func (s *Store) SetFeedIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.SetIndex(i)
}

// JumpToVideo 跳到指定视频，列表里没有则返回 false
func (s *Store) JumpToVideo(videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.JumpTo(videoID)
}

// NarrowFeed 深链进入单视频播放
func (s *Store) NarrowFeed(v model.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.Narrow(v)
}

// CanAutoAdvance 是否允许定时自动推进
func (s *Store) CanAutoAdvance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.CanAutoAdvance()
}
