package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/store"
	"github.com/user/myzend/internal/utils"
)

type noopSyncer struct{}

func (noopSyncer) SyncInteraction(model.UserInteraction)     {}
func (noopSyncer) SyncEmotion(model.EmotionLog)              {}
func (noopSyncer) SyncMark(int, model.MarkList, model.Video) {}
func (noopSyncer) SyncUnmark(int, model.MarkList, string)    {}

type fakeShorts struct {
	videos []model.Video
	err    error
}

func (f *fakeShorts) ForEmotion(model.Emotion) ([]model.Video, error) {
	return f.videos, f.err
}

func (f *fakeShorts) FetchChannel(string) ([]model.Video, error) {
	return f.videos, f.err
}

type fakeRecommender struct {
	videos []model.Video
	err    error
}

func (f *fakeRecommender) RecommendVideos(model.Emotion, []model.UserInteraction) ([]model.Video, error) {
	return f.videos, f.err
}

func (f *fakeRecommender) ImproveRecommendations(int, model.Emotion, string, model.InteractionType, []string) (*model.RefinementLog, error) {
	return nil, nil
}

func newSessionStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New(&model.User{ID: 1, Email: "ana@example.com", Name: "Ana"}, noopSyncer{})
	require.NoError(t, s.SetSelectedEmotion(model.EmotionTriste))
	return s
}

func TestLoadFeedFallsBackAndRecordsError(t *testing.T) {
	h := &Handler{
		Shorts:    &fakeShorts{err: fmt.Errorf("sin red")},
		Recommend: &fakeRecommender{err: fmt.Errorf("modelo caído")},
	}
	s := newSessionStore(t)

	h.loadFeed(s, model.EmotionTriste)

	// 两个来源都失败：替换为内置样例，错误状态留在会话里
	assert.NotEmpty(t, s.LastError())
	assert.False(t, s.Loading())
	snap := s.Snapshot()
	require.NotEmpty(t, snap.Videos)
	for _, v := range snap.Videos {
		assert.Equal(t, "fallback", v.RenderHint)
	}
}

func TestLoadFeedUsesLLMWhenShortsFail(t *testing.T) {
	h := &Handler{
		Shorts:    &fakeShorts{err: fmt.Errorf("bloqueado")},
		Recommend: &fakeRecommender{videos: []model.Video{{ID: "ai-1", Description: "Respira hondo"}}},
	}
	s := newSessionStore(t)

	h.loadFeed(s, model.EmotionTriste)

	assert.Empty(t, s.LastError())
	snap := s.Snapshot()
	require.Len(t, snap.Videos, 1)
	assert.Equal(t, "ai-1", snap.Videos[0].ID)
}

func TestLoadFeedPrefersShorts(t *testing.T) {
	h := &Handler{
		Shorts:    &fakeShorts{videos: []model.Video{{ID: "AAAAAAAAAAA", RenderHint: "shorts"}}},
		Recommend: &fakeRecommender{err: fmt.Errorf("no debería llamarse")},
	}
	s := newSessionStore(t)

	h.loadFeed(s, model.EmotionTriste)

	assert.Empty(t, s.LastError())
	snap := s.Snapshot()
	require.Len(t, snap.Videos, 1)
	assert.Equal(t, "AAAAAAAAAAA", snap.Videos[0].ID)
}

func TestAPIShorts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		Shorts: &fakeShorts{videos: []model.Video{
			{ID: "AAAAAAAAAAA", URL: "https://www.youtube.com/shorts/AAAAAAAAAAA"},
			{ID: "BBBBBBBBBBB", URL: "https://www.youtube.com/shorts/BBBBBBBBBBB"},
			{ID: "CCCCCCCCCCC", URL: "https://www.youtube.com/shorts/CCCCCCCCCCC"},
		}},
	}
	r := gin.New()
	r.POST("/api/shorts", h.APIShorts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shorts",
		strings.NewReader(`{"channel_handle":"Enchufetv","limit":2}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ShortsURLs []string `json:"shorts_urls"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{
		"https://www.youtube.com/shorts/AAAAAAAAAAA",
		"https://www.youtube.com/shorts/BBBBBBBBBBB",
	}, resp.Data.ShortsURLs)
}

func TestAPIShortsMissingHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{Shorts: &fakeShorts{}}
	r := gin.New()
	r.POST("/api/shorts", h.APIShorts)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/shorts", strings.NewReader(`{"limit":5}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Datos de solicitud inválidos", resp.Message)
}
