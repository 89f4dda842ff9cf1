package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractShortsVideoID(t *testing.T) {
	assert.Equal(t, "dQw4w9WgXcQ", ExtractShortsVideoID("https://www.youtube.com/shorts/dQw4w9WgXcQ"))
	assert.Equal(t, "abc-123_XYZ", ExtractShortsVideoID("/shorts/abc-123_XYZ?feature=share"))
	assert.Empty(t, ExtractShortsVideoID("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.Empty(t, ExtractShortsVideoID(""))
}

func TestShortsURLs(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/shorts/abc", ShortsURL("abc"))
	assert.Equal(t, "https://img.youtube.com/vi/abc/hqdefault.jpg", ShortsThumbnailURL("abc"))
	assert.Empty(t, ShortsThumbnailURL(""))
}

func TestNormalizeChannelHandle(t *testing.T) {
	assert.Equal(t, "Enchufetv", NormalizeChannelHandle("Enchufetv"))
	assert.Equal(t, "Enchufetv", NormalizeChannelHandle("@Enchufetv"))
	assert.Equal(t, "Enchufetv", NormalizeChannelHandle("https://www.youtube.com/@Enchufetv/shorts"))
	assert.Equal(t, "Enchufetv", NormalizeChannelHandle("  @Enchufetv "))
}
