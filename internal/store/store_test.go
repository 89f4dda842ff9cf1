package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/myzend/internal/feed"
	"github.com/user/myzend/internal/model"
)

// fakeSyncer 记录同步调用，代替真实的 outbox
type fakeSyncer struct {
	mu           sync.Mutex
	interactions []model.UserInteraction
	emotions     []model.EmotionLog
	marks        []model.MarkList
	unmarks      []string
}

func (f *fakeSyncer) SyncInteraction(i model.UserInteraction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactions = append(f.interactions, i)
}

func (f *fakeSyncer) SyncEmotion(l model.EmotionLog) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emotions = append(f.emotions, l)
}

func (f *fakeSyncer) SyncMark(userID int, list model.MarkList, video model.Video) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marks = append(f.marks, list)
}

func (f *fakeSyncer) SyncUnmark(userID int, list model.MarkList, videoID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmarks = append(f.unmarks, videoID)
}

func newTestStore() (*Store, *fakeSyncer) {
	syncer := &fakeSyncer{}
	user := &model.User{ID: 1, Email: "ana@example.com", Name: "Ana"}
	return New(user, syncer), syncer
}

func TestSetSelectedEmotion(t *testing.T) {
	s, syncer := newTestStore()

	err := s.SetSelectedEmotion(model.EmotionTriste)
	require.NoError(t, err)
	assert.Equal(t, model.EmotionTriste, s.SelectedEmotion())

	// 乐观前插：最新的在最前面
	err = s.SetSelectedEmotion(model.EmotionEstresado)
	require.NoError(t, err)
	history := s.EmotionHistory()
	require.Len(t, history, 2)
	assert.Equal(t, model.EmotionEstresado, history[0].Emotion)
	assert.Equal(t, model.EmotionTriste, history[1].Emotion)

	assert.Len(t, syncer.emotions, 2)
}

func TestSetSelectedEmotionRejectsInvalid(t *testing.T) {
	s, syncer := newTestStore()

	err := s.SetSelectedEmotion("Eufórico/a")
	assert.Error(t, err)
	assert.Empty(t, s.SelectedEmotion())
	assert.Empty(t, syncer.emotions)
}

func TestRecordInteractionRequiresEmotion(t *testing.T) {
	s, syncer := newTestStore()

	_, err := s.RecordInteraction(model.Video{ID: "v1"}, model.InteractionLike)
	assert.Error(t, err)
	assert.Empty(t, s.History())
	assert.Empty(t, syncer.interactions)
}

func TestRecordInteractionAppendsAndDerives(t *testing.T) {
	s, syncer := newTestStore()
	require.NoError(t, s.SetSelectedEmotion(model.EmotionTriste))

	v1 := model.Video{ID: "v1", URL: "https://youtube.com/shorts/v1", Description: "gatitos"}
	v2 := model.Video{ID: "v2", Description: "ruido"}

	i1, err := s.RecordInteraction(v1, model.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, "v1", i1.VideoID)
	assert.Equal(t, model.EmotionTriste, i1.Emotion)

	_, err = s.RecordInteraction(v1, model.InteractionSave)
	require.NoError(t, err)
	_, err = s.RecordInteraction(v2, model.InteractionReport)
	require.NoError(t, err)

	// 历史按追加顺序保存三条
	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, model.InteractionLike, history[0].Type)
	assert.Equal(t, model.InteractionSave, history[1].Type)
	assert.Equal(t, model.InteractionReport, history[2].Type)

	// 衍生集合各归各位
	assert.True(t, s.IsMarked(model.MarkLiked, "v1"))
	assert.True(t, s.IsMarked(model.MarkSaved, "v1"))
	assert.True(t, s.IsMarked(model.MarkDisliked, "v2"))
	assert.False(t, s.IsMarked(model.MarkLiked, "v2"))

	assert.Len(t, syncer.interactions, 3)
	assert.Len(t, syncer.marks, 3)
}

func TestRecordInteractionDedupes(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.SetSelectedEmotion(model.EmotionTriste))

	v := model.Video{ID: "v1", Description: "gatitos"}
	_, err := s.RecordInteraction(v, model.InteractionLike)
	require.NoError(t, err)
	_, err = s.RecordInteraction(v, model.InteractionLike)
	require.NoError(t, err)

	// 历史两条，集合里只有一份
	assert.Len(t, s.History(), 2)
	assert.Len(t, s.Marked(model.MarkLiked), 1)
}

func TestRemoveMarkKeepsHistory(t *testing.T) {
	s, syncer := newTestStore()
	require.NoError(t, s.SetSelectedEmotion(model.EmotionTriste))

	v := model.Video{ID: "v1"}
	_, err := s.RecordInteraction(v, model.InteractionSave)
	require.NoError(t, err)

	require.NoError(t, s.RemoveMark(model.MarkSaved, "v1"))
	assert.False(t, s.IsMarked(model.MarkSaved, "v1"))
	assert.Len(t, s.History(), 1)
	assert.Equal(t, []string{"v1"}, syncer.unmarks)

	// 重复移除是空操作
	require.NoError(t, s.RemoveMark(model.MarkSaved, "v1"))
}

func TestRebuildFromHistoryIsAuthoritative(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.SetSelectedEmotion(model.EmotionTriste))
	_, err := s.RecordInteraction(model.Video{ID: "local"}, model.InteractionLike)
	require.NoError(t, err)

	fromDB := []*model.UserInteraction{
		{VideoID: "a", VideoTitle: "video a", Type: model.InteractionLike},
		{VideoID: "b", VideoTitle: "video b", Type: model.InteractionSave},
		{VideoID: "c", VideoTitle: "video c", Type: model.InteractionReport},
	}
	s.RebuildFromHistory(fromDB)

	require.Len(t, s.History(), 3)
	assert.False(t, s.IsMarked(model.MarkLiked, "local"))
	assert.True(t, s.IsMarked(model.MarkLiked, "a"))
	assert.True(t, s.IsMarked(model.MarkSaved, "b"))
	assert.True(t, s.IsMarked(model.MarkDisliked, "c"))

	// 幂等：重复重建结果不变
	s.RebuildFromHistory(fromDB)
	assert.Len(t, s.History(), 3)
	assert.Len(t, s.Marked(model.MarkLiked), 1)
}

func TestSetMarksOverridesDerivedSet(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.SetSelectedEmotion(model.EmotionTriste))
	_, err := s.RecordInteraction(model.Video{ID: "old"}, model.InteractionSave)
	require.NoError(t, err)

	// 数据库里该用户已取消 old，只剩 fresh
	s.SetMarks(model.MarkSaved, []model.Video{{ID: "fresh"}})

	assert.False(t, s.IsMarked(model.MarkSaved, "old"))
	assert.True(t, s.IsMarked(model.MarkSaved, "fresh"))
	assert.Len(t, s.History(), 1)
}

func TestSetVideoRecommendationsClearsFlags(t *testing.T) {
	s, _ := newTestStore()
	s.SetLoading(true)
	s.SetError("falló la carga")

	s.SetVideoRecommendations([]model.Video{{ID: "v1"}, {ID: "v2"}})

	assert.False(t, s.Loading())
	assert.Empty(t, s.LastError())
	snap := s.Snapshot()
	assert.Len(t, snap.Videos, 2)
	assert.Equal(t, 0, snap.Index)
}

func TestLogoutClearsEverything(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.SetSelectedEmotion(model.EmotionTriste))
	_, err := s.RecordInteraction(model.Video{ID: "v1"}, model.InteractionLike)
	require.NoError(t, err)
	s.SetVideoRecommendations([]model.Video{{ID: "v1"}})

	s.Logout()

	assert.Nil(t, s.User())
	assert.Empty(t, s.SelectedEmotion())
	assert.Empty(t, s.History())
	assert.Empty(t, s.EmotionHistory())
	assert.Empty(t, s.Marked(model.MarkLiked))
	snap := s.Snapshot()
	assert.Empty(t, snap.Videos)
}

func TestFeedControlThroughStore(t *testing.T) {
	s, _ := newTestStore()
	s.SetVideoRecommendations([]model.Video{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	current, ok := s.AdvanceFeed(feed.ModeAutoplay)
	require.True(t, ok)
	assert.Equal(t, "b", current.ID)

	require.NoError(t, s.SetFeedMode(feed.ModeManual))
	s.SetFeedIndex(2)
	assert.Equal(t, 2, s.Snapshot().Index)

	assert.Error(t, s.SetFeedMode("invalid"))

	assert.True(t, s.JumpToVideo("a"))
	assert.Equal(t, 0, s.Snapshot().Index)
	assert.False(t, s.JumpToVideo("missing"))
}

func TestManagerReusesAndDrops(t *testing.T) {
	m := NewManager(8, &fakeSyncer{})
	user := &model.User{ID: 7, Email: "ana@example.com"}

	s1 := m.Get(user)
	s2 := m.Get(user)
	assert.Same(t, s1, s2)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, s1.SetSelectedEmotion(model.EmotionTriste))
	m.Drop(7)
	assert.Nil(t, m.Peek(7))
	assert.Empty(t, s1.SelectedEmotion())
}
