package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/myzend/internal/model"
)

const shortsPageHTML = `<!DOCTYPE html>
<html><head><title>Canal</title></head><body>
<script>var other = 1;</script>
<script>var ytInitialData = {"contents":[
{"videoId":"AAAAAAAAAAA","headline":{"simpleText":"Primer video"}},
{"videoId":"BBBBBBBBBBB","headline":{"simpleText":"Risa \u0026 calma"}},
{"videoId":"AAAAAAAAAAA","headline":{"simpleText":"Duplicado"}},
{"videoId":"CCCCCCCCCCC"}
]};</script>
</body></html>`

func TestParseShortsPage(t *testing.T) {
	videos := ParseShortsPage([]byte(shortsPageHTML))
	require.Len(t, videos, 3)

	assert.Equal(t, "AAAAAAAAAAA", videos[0].ID)
	assert.Equal(t, "https://www.youtube.com/shorts/AAAAAAAAAAA", videos[0].URL)
	assert.Equal(t, "https://img.youtube.com/vi/AAAAAAAAAAA/hqdefault.jpg", videos[0].ThumbnailURL)
	assert.Equal(t, "Primer video", videos[0].Description)
	assert.Equal(t, "shorts", videos[0].RenderHint)

	// 转义的标题还原
	assert.Equal(t, "BBBBBBBBBBB", videos[1].ID)
	assert.Equal(t, "Risa & calma", videos[1].Description)

	// 没带标题的条目也保留
	assert.Equal(t, "CCCCCCCCCCC", videos[2].ID)
	assert.Empty(t, videos[2].Description)
}

func TestUnescapeTitle(t *testing.T) {
	assert.Equal(t, "Risa & calma", unescapeTitle(`Risa & calma`))
	assert.Equal(t, `dijo "hola" a todos`, unescapeTitle(`dijo \"hola\" a todos`))
	assert.Equal(t, "antes/después", unescapeTitle(`antes\/después`))
	assert.Equal(t, "sin escapes", unescapeTitle("sin escapes"))
}

func TestParseShortsPageEmpty(t *testing.T) {
	assert.Empty(t, ParseShortsPage([]byte("<html><body>nada</body></html>")))
}

func TestFetchChannelCachesResult(t *testing.T) {
	s := NewShortsService(nil, 30, time.Minute)

	var calls int32
	s.fetchPage = func(url string) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(shortsPageHTML), nil
	}

	first, err := s.FetchChannel("@Enchufetv")
	require.NoError(t, err)
	require.Len(t, first, 3)

	// 第二次命中内存缓存，不再请求
	second, err := s.FetchChannel("Enchufetv")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchChannelPropagatesFailure(t *testing.T) {
	s := NewShortsService(nil, 30, time.Minute)
	s.fetchPage = func(url string) ([]byte, error) {
		return nil, fmt.Errorf("bloqueado")
	}

	_, err := s.FetchChannel("Enchufetv")
	assert.Error(t, err)
}

func TestForEmotionUnknownChannels(t *testing.T) {
	s := NewShortsService(nil, 30, time.Minute)
	_, err := s.ForEmotion("SinConfigurar")
	assert.Error(t, err)
}

func TestForEmotionInterleavesSources(t *testing.T) {
	s := NewShortsService(nil, 4, time.Minute)

	// 每个频道返回可区分的固定列表
	s.fetchPage = func(url string) ([]byte, error) {
		return nil, fmt.Errorf("sin red")
	}
	channels := model.EmotionChannels[model.EmotionTriste]
	require.NotEmpty(t, channels)
	for i, handle := range channels {
		videos := []model.Video{
			{ID: fmt.Sprintf("ch%d-v0", i)},
			{ID: fmt.Sprintf("ch%d-v1", i)},
		}
		s.cache.Set(handle, videos)
	}

	merged, err := s.ForEmotion(model.EmotionTriste)
	require.NoError(t, err)

	// 轮询交错：先每个频道的第 0 条，截断到 limit
	require.Len(t, merged, 4)
	assert.Equal(t, "ch0-v0", merged[0].ID)
	assert.Equal(t, "ch1-v0", merged[1].ID)
}

func TestInterleave(t *testing.T) {
	a := []model.Video{{ID: "a1"}, {ID: "a2"}}
	b := []model.Video{{ID: "b1"}}
	c := []model.Video{{ID: "a1"}, {ID: "c2"}, {ID: "c3"}}

	merged := interleave([][]model.Video{a, b, c}, 0)

	ids := make([]string, 0, len(merged))
	for _, v := range merged {
		ids = append(ids, v.ID)
	}
	// 重复的 a1 只保留一次
	assert.Equal(t, []string{"a1", "b1", "a2", "c2", "c3"}, ids)
}

func TestInterleaveRespectsLimit(t *testing.T) {
	a := []model.Video{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	merged := interleave([][]model.Video{a}, 2)
	assert.Len(t, merged, 2)
}
