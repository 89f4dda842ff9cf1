package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/myzend/internal/model"
)

func videos(ids ...string) []model.Video {
	out := make([]model.Video, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Video{ID: id, Description: "video " + id})
	}
	return out
}

func TestNewStartsAtZeroInAutoplay(t *testing.T) {
	f := New(videos("a", "b", "c"))

	assert.Equal(t, 0, f.Index())
	assert.Equal(t, ModeAutoplay, f.Mode())

	current, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "a", current.ID)
}

func TestCurrentOnEmptyFeed(t *testing.T) {
	f := New(nil)

	_, ok := f.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, f.Len())
}

func TestAdvanceWrapsAround(t *testing.T) {
	f := New(videos("a", "b", "c"))

	f.Advance(ModeAutoplay)
	assert.Equal(t, 1, f.Index())
	f.Advance(ModeAutoplay)
	assert.Equal(t, 2, f.Index())
	f.Advance(ModeAutoplay)
	assert.Equal(t, 0, f.Index())
}

func TestAdvanceIgnoresWrongDriver(t *testing.T) {
	f := New(videos("a", "b", "c"))

	// 自动模式下，手动和播放器的推进都不生效
	f.Advance(ModeManual)
	f.Advance(ModePlayer)
	assert.Equal(t, 0, f.Index())

	f.SetMode(ModePlayer)
	f.Advance(ModeAutoplay)
	assert.Equal(t, 0, f.Index())
	f.Advance(ModePlayer)
	assert.Equal(t, 1, f.Index())
}

func TestAdvanceSingleVideoIsNoop(t *testing.T) {
	f := New(videos("solo"))

	f.Advance(ModeAutoplay)
	assert.Equal(t, 0, f.Index())
}

func TestSetVideosResetsIndex(t *testing.T) {
	f := New(videos("a", "b", "c"))
	f.Advance(ModeAutoplay)
	f.Advance(ModeAutoplay)
	require.Equal(t, 2, f.Index())

	f.SetVideos(videos("x", "y"))
	assert.Equal(t, 0, f.Index())

	current, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "x", current.ID)
}

func TestSetIndexOnlyInManualMode(t *testing.T) {
	f := New(videos("a", "b", "c"))

	// 自动模式下手动跳转不生效
	f.SetIndex(2)
	assert.Equal(t, 0, f.Index())

	f.SetMode(ModeManual)
	f.SetIndex(2)
	assert.Equal(t, 2, f.Index())
}

func TestSetIndexClampsOutOfRange(t *testing.T) {
	f := New(videos("a", "b", "c"))
	f.SetMode(ModeManual)

	f.SetIndex(99)
	assert.Equal(t, 2, f.Index())

	f.SetIndex(-5)
	assert.Equal(t, 0, f.Index())
}

func TestJumpTo(t *testing.T) {
	f := New(videos("a", "b", "c"))

	assert.True(t, f.JumpTo("b"))
	assert.Equal(t, 1, f.Index())

	assert.False(t, f.JumpTo("missing"))
	assert.Equal(t, 1, f.Index())
}

func TestNarrowToSingleVideo(t *testing.T) {
	f := New(videos("a", "b", "c"))

	f.Narrow(model.Video{ID: "deeplink"})

	assert.True(t, f.Narrowed())
	assert.Equal(t, 1, f.Len())
	current, ok := f.Current()
	require.True(t, ok)
	assert.Equal(t, "deeplink", current.ID)

	// 收窄后不允许自动推进
	assert.False(t, f.CanAutoAdvance())
}

func TestCanAutoAdvance(t *testing.T) {
	assert.False(t, New(nil).CanAutoAdvance())
	assert.False(t, New(videos("solo")).CanAutoAdvance())
	assert.True(t, New(videos("a", "b")).CanAutoAdvance())

	f := New(videos("a", "b"))
	f.SetMode(ModeManual)
	assert.False(t, f.CanAutoAdvance())
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode("autoplay"))
	assert.True(t, ValidMode("manual"))
	assert.True(t, ValidMode("player"))
	assert.False(t, ValidMode("random"))
	assert.False(t, ValidMode(""))
}
