package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/user/myzend/internal/feed"
	"github.com/user/myzend/internal/model"
)

// Syncer 后端同步接口，由可重试的 outbox 实现
// 调用立即返回，持久化失败由 outbox 自行重试，不会静默丢弃
type Syncer interface {
	SyncInteraction(i model.UserInteraction)
	SyncEmotion(l model.EmotionLog)
	SyncMark(userID int, list model.MarkList, video model.Video)
	SyncUnmark(userID int, list model.MarkList, videoID string)
}

// Store 会话级状态容器
// 会话内的唯一事实来源：当前用户、所选情绪、推荐列表、互动历史、
// 衍生的喜欢/收藏/不喜欢集合与加载/错误标记。
// 所有修改都经过这里的具名方法，外部不允许直接改字段
type Store struct {
	mu sync.Mutex

	user           *model.User
	emotion        model.Emotion
	feed           *feed.Feed
	history        []model.UserInteraction
	marks          map[model.MarkList]*markSet
	emotionHistory []model.EmotionLog
	loading        bool
	lastError      string

	syncer Syncer
}

// markSet 保序去重的视频集合
type markSet struct {
	order []string
	items map[string]model.Video
}

func newMarkSet() *markSet {
	return &markSet{items: make(map[string]model.Video)}
}

func (s *markSet) add(v model.Video) {
	if _, ok := s.items[v.ID]; ok {
		return
	}
	s.items[v.ID] = v
	s.order = append(s.order, v.ID)
}

func (s *markSet) remove(videoID string) {
	if _, ok := s.items[videoID]; !ok {
		return
	}
	delete(s.items, videoID)
	for i, id := range s.order {
		if id == videoID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *markSet) has(videoID string) bool {
	_, ok := s.items[videoID]
	return ok
}

func (s *markSet) videos() []model.Video {
	out := make([]model.Video, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// New 为已登录用户创建状态容器
func New(user *model.User, syncer Syncer) *Store {
	return &Store{
		user:   user,
		feed:   feed.New(nil),
		syncer: syncer,
		marks: map[model.MarkList]*markSet{
			model.MarkLiked:    newMarkSet(),
			model.MarkSaved:    newMarkSet(),
			model.MarkDisliked: newMarkSet(),
		},
	}
}

// User 当前用户
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Logout 清空全部会话状态：用户、情绪、推荐、历史与衍生集合
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.emotion = ""
	s.feed = feed.New(nil)
	s.history = nil
	s.emotionHistory = nil
	s.loading = false
	s.lastError = ""
	for list := range s.marks {
		s.marks[list] = newMarkSet()
	}
}

// SelectedEmotion 当前所选情绪（未选择返回空串）
func (s *Store) SelectedEmotion() model.Emotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emotion
}

// SetSelectedEmotion 选择情绪：本地乐观前插情绪历史，并交给 outbox 落库
func (s *Store) SetSelectedEmotion(e model.Emotion) error {
	if !model.ValidEmotion(string(e)) {
		return fmt.Errorf("emoción inválida: %q", e)
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return fmt.Errorf("sesión no iniciada")
	}
	s.emotion = e
	entry := model.EmotionLog{
		UserID:    s.user.ID,
		Email:     s.user.Email,
		Emotion:   e,
		CreatedAt: time.Now(),
	}
	s.emotionHistory = append([]model.EmotionLog{entry}, s.emotionHistory...)
	s.mu.Unlock()

	s.syncer.SyncEmotion(entry)
	return nil
}

// SetVideoRecommendations 整体替换推荐列表并清除加载/错误标记
func (s *Store) SetVideoRecommendations(videos []model.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.SetVideos(videos)
	s.loading = false
	s.lastError = ""
}

// SetLoading 设置加载标记
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Loading 是否加载中
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// SetError 记录错误并清除加载标记
func (s *Store) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
	s.loading = false
}

// LastError 最近一次错误（空串表示无错误）
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// RecordInteraction 记录一次互动：唯一的互动写入口
// 一步完成历史追加 + 衍生集合更新 + outbox 落库，不存在第二条写路径
func (s *Store) RecordInteraction(video model.Video, t model.InteractionType) (model.UserInteraction, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return model.UserInteraction{}, fmt.Errorf("sesión no iniciada")
	}
	if s.emotion == "" {
		s.mu.Unlock()
		return model.UserInteraction{}, fmt.Errorf("no has elegido cómo te sientes")
	}

	interaction := model.UserInteraction{
		UserID:         s.user.ID,
		Email:          s.user.Email,
		VideoID:        video.ID,
		VideoURL:       video.URL,
		VideoTitle:     video.Description,
		VideoThumbnail: video.ThumbnailURL,
		Type:           t,
		Emotion:        s.emotion,
		CreatedAt:      time.Now(),
	}
	s.history = append(s.history, interaction)

	list, hasList := model.MarkForInteraction(t)
	if hasList {
		s.marks[list].add(video)
	}
	userID := s.user.ID
	s.mu.Unlock()

	s.syncer.SyncInteraction(interaction)
	if hasList {
		s.syncer.SyncMark(userID, list, video)
	}
	return interaction, nil
}

// RemoveMark 将视频移出衍生集合（取消喜欢/收藏），互动历史保持不动
func (s *Store) RemoveMark(list model.MarkList, videoID string) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return fmt.Errorf("sesión no iniciada")
	}
	set, ok := s.marks[list]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("lista inválida: %q", list)
	}
	set.remove(videoID)
	userID := s.user.ID
	s.mu.Unlock()

	s.syncer.SyncUnmark(userID, list, videoID)
	return nil
}

// IsMarked 视频是否在指定集合中
func (s *Store) IsMarked(list model.MarkList, videoID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.marks[list]
	return ok && set.has(videoID)
}

// Marked 指定集合的视频（按加入顺序）
func (s *Store) Marked(list model.MarkList) []model.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.marks[list]
	if !ok {
		return nil
	}
	return set.videos()
}

// History 互动历史副本（追加顺序）
func (s *Store) History() []model.UserInteraction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.UserInteraction, len(s.history))
	copy(out, s.history)
	return out
}

// EmotionHistory 情绪历史副本（最新在前）
func (s *Store) EmotionHistory() []model.EmotionLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.EmotionLog, len(s.emotionHistory))
	copy(out, s.emotionHistory)
	return out
}

// RebuildFromHistory 用数据库里的权威互动日志重建历史与衍生集合
// 档案页/收藏页挂载时调用，可重复调用（幂等）
func (s *Store) RebuildFromHistory(interactions []*model.UserInteraction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = s.history[:0]
	for list := range s.marks {
		s.marks[list] = newMarkSet()
	}
	for _, i := range interactions {
		s.history = append(s.history, *i)
		if list, ok := model.MarkForInteraction(i.Type); ok {
			s.marks[list].add(i.Video())
		}
	}
	s.loading = false
}

// SetMarks 用数据库里的权威标记列表替换单个衍生集合
// 互动日志只增不删，取消标记只体现在 saved_videos 表里，
// 重建后必须用这里的列表覆盖按历史推导出的集合
func (s *Store) SetMarks(list model.MarkList, videos []model.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := newMarkSet()
	for _, v := range videos {
		set.add(v)
	}
	s.marks[list] = set
}

// SetEmotionHistory 用数据库里的权威情绪日志替换本地历史
func (s *Store) SetEmotionHistory(logs []*model.EmotionLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emotionHistory = s.emotionHistory[:0]
	for _, l := range logs {
		s.emotionHistory = append(s.emotionHistory, *l)
	}
}
