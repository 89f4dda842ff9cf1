package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var shortsIDPattern = regexp.MustCompile(`shorts/([\w-]+)`)

// ExtractShortsVideoID 从 Shorts 链接中提取视频 ID
// 支持完整链接（https://www.youtube.com/shorts/xxx）和相对路径（/shorts/xxx）
func ExtractShortsVideoID(url string) string {
	match := shortsIDPattern.FindStringSubmatch(url)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// ShortsURL 由视频 ID 构造标准 Shorts 链接
func ShortsURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/shorts/%s", videoID)
}

// ShortsThumbnailURL 由视频 ID 推导缩略图地址
func ShortsThumbnailURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", videoID)
}

// NormalizeChannelHandle 规整频道句柄（允许传入带 @ 或完整链接）
func NormalizeChannelHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "https://www.youtube.com/")
	handle = strings.TrimPrefix(handle, "https://youtube.com/")
	handle = strings.TrimPrefix(handle, "@")
	if i := strings.IndexByte(handle, '/'); i >= 0 {
		handle = handle[:i]
	}
	return handle
}
