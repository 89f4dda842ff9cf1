package service

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/singleflight"

	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/repository"
	"github.com/user/myzend/internal/utils"
)

// ShortsService YouTube Shorts 抓取服务
// 按频道抓取 /shorts 页面，三层缓存：进程内 LRU → 数据库 → 抓取。
// 抓取用 singleflight 合并并发请求，同一频道同时只抓一次
type ShortsService struct {
	client  *utils.HTTPClient
	cache   *utils.TTLCache[[]model.Video]
	dbCache *repository.ShortsCacheRepository
	sf      singleflight.Group
	limit   int
	ttl     time.Duration

	// fetchPage 可注入，测试时替换为本地 HTML
	fetchPage func(url string) ([]byte, error)
}

// NewShortsService 创建抓取服务，limit 为单次返回的视频上限
func NewShortsService(dbCache *repository.ShortsCacheRepository, limit int, ttl time.Duration) *ShortsService {
	client := utils.NewHTTPClient()
	s := &ShortsService{
		client:  client,
		cache:   utils.NewTTLCache[[]model.Video](128, ttl),
		dbCache: dbCache,
		limit:   limit,
		ttl:     ttl,
	}
	s.fetchPage = client.GetBody
	return s
}

// ForEmotion 按情绪取 Shorts 列表
// 并发抓取该情绪配置的所有频道，轮询交错合并，保证来源多样
func (s *ShortsService) ForEmotion(emotion model.Emotion) ([]model.Video, error) {
	channels, ok := model.EmotionChannels[emotion]
	if !ok || len(channels) == 0 {
		return nil, fmt.Errorf("情绪 %q 没有配置频道", emotion)
	}

	results := make([][]model.Video, len(channels))
	var wg sync.WaitGroup
	for i, handle := range channels {
		wg.Add(1)
		go func(i int, handle string) {
			defer wg.Done()
			videos, err := s.FetchChannel(handle)
			if err != nil {
				log.Printf("抓取频道 %s 失败: %v", handle, err)
				return
			}
			results[i] = videos
		}(i, handle)
	}
	wg.Wait()

	merged := interleave(results, s.limit)
	if len(merged) == 0 {
		return nil, fmt.Errorf("情绪 %q 的所有频道都抓取失败", emotion)
	}
	return merged, nil
}

// FetchChannel 抓取单个频道的 Shorts
func (s *ShortsService) FetchChannel(handle string) ([]model.Video, error) {
	handle = utils.NormalizeChannelHandle(handle)

	if videos, ok := s.cache.Get(handle); ok {
		return videos, nil
	}

	v, err, _ := s.sf.Do(handle, func() (interface{}, error) {
		return s.fetchChannel(handle)
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.Video), nil
}

func (s *ShortsService) fetchChannel(handle string) ([]model.Video, error) {
	// 先查数据库缓存
	if s.dbCache != nil {
		entry, err := s.dbCache.Find(handle)
		if err != nil {
			log.Printf("查询 Shorts 缓存失败: %v", err)
		} else if entry != nil {
			var videos []model.Video
			if err := json.Unmarshal([]byte(entry.ResultJSON), &videos); err == nil && len(videos) > 0 {
				s.cache.Set(handle, videos)
				return videos, nil
			}
		}
	}

	pageURL := fmt.Sprintf("https://www.youtube.com/@%s/shorts", handle)
	body, err := s.fetchPage(pageURL)
	if err != nil {
		return s.staleFallback(handle, fmt.Errorf("请求 %s 失败: %w", pageURL, err))
	}

	videos := ParseShortsPage(body)
	if len(videos) == 0 {
		return s.staleFallback(handle, fmt.Errorf("页面 %s 没有解析出视频", pageURL))
	}

	s.cache.Set(handle, videos)
	if s.dbCache != nil {
		if data, err := json.Marshal(videos); err == nil {
			if err := s.dbCache.Upsert(handle, string(data), s.ttl); err != nil {
				log.Printf("写入 Shorts 缓存失败: %v", err)
			}
		}
	}
	return videos, nil
}

// staleFallback 抓取失败时退回过期的数据库缓存，聊胜于无
func (s *ShortsService) staleFallback(handle string, cause error) ([]model.Video, error) {
	if s.dbCache == nil {
		return nil, cause
	}
	entry, _, err := s.dbCache.FindWithExpiry(handle)
	if err != nil || entry == nil {
		return nil, cause
	}
	var videos []model.Video
	if err := json.Unmarshal([]byte(entry.ResultJSON), &videos); err != nil || len(videos) == 0 {
		return nil, cause
	}
	log.Printf("频道 %s 抓取失败，使用过期缓存: %v", handle, cause)
	return videos, nil
}

var (
	shortsItemPattern = regexp.MustCompile(`"videoId":"([\w-]{11})"(?:.{0,500}?"headline":\{"simpleText":"((?:[^"\\]|\\.)*)"\})?`)
	escapePattern     = regexp.MustCompile(`\\u0026|\\(["/])`)
)

// ParseShortsPage 从频道 /shorts 页面解析视频列表
// 数据在内嵌的 ytInitialData 脚本里，先用 goquery 取出脚本再正则提取
func ParseShortsPage(body []byte) []model.Video {
	payload := string(body)
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload)); err == nil {
		doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := sel.Text()
			if strings.Contains(text, "ytInitialData") {
				payload = text
				return false
			}
			return true
		})
	}

	seen := make(map[string]bool)
	var videos []model.Video
	for _, m := range shortsItemPattern.FindAllStringSubmatch(payload, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		videos = append(videos, model.Video{
			ID:           id,
			URL:          utils.ShortsURL(id),
			Description:  unescapeTitle(m[2]),
			ThumbnailURL: utils.ShortsThumbnailURL(id),
			RenderHint:   "shorts",
		})
	}
	return videos
}

func unescapeTitle(title string) string {
	return escapePattern.ReplaceAllStringFunc(title, func(s string) string {
		if s == `\u0026` {
			return "&"
		}
		return s[1:]
	})
}

// interleave 多个来源轮询交错合并，去重并截断到 limit
func interleave(sources [][]model.Video, limit int) []model.Video {
	seen := make(map[string]bool)
	var merged []model.Video
	for round := 0; ; round++ {
		progressed := false
		for _, src := range sources {
			if round >= len(src) {
				continue
			}
			progressed = true
			v := src[round]
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			merged = append(merged, v)
			if limit > 0 && len(merged) >= limit {
				return merged
			}
		}
		if !progressed {
			return merged
		}
	}
}
