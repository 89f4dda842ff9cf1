package feed

import (
	"github.com/user/myzend/internal/model"
)

// Mode 信息流推进模式
// 同一时刻只有一种模式是索引的权威驱动：
// 定时自动推进、手动滚动上报、播放器播完事件，三者互斥
type Mode string

const (
	ModeAutoplay Mode = "autoplay"
	ModeManual   Mode = "manual"
	ModePlayer   Mode = "player"
)

// ValidMode 校验模式值
func ValidMode(m string) bool {
	switch Mode(m) {
	case ModeAutoplay, ModeManual, ModePlayer:
		return true
	}
	return false
}

// Feed 信息流状态机
// 维护 currentIndex ∈ [0, N)。非线程安全，由持有它的 Store 加锁
type Feed struct {
	videos   []model.Video
	index    int
	mode     Mode
	narrowed bool
}

// New 创建信息流，初始索引为 0，默认自动推进模式
func New(videos []model.Video) *Feed {
	return &Feed{
		videos: videos,
		mode:   ModeAutoplay,
	}
}

// SetVideos 整体替换推荐列表
// 列表变化时索引必须复位，否则残留的定时器会写入越界索引
func (f *Feed) SetVideos(videos []model.Video) {
	f.videos = videos
	f.index = 0
	f.narrowed = false
}

// Videos 当前推荐列表
func (f *Feed) Videos() []model.Video {
	return f.videos
}

// Len 推荐条数
func (f *Feed) Len() int {
	return len(f.videos)
}

// Index 当前索引
func (f *Feed) Index() int {
	return f.index
}

// Mode 当前推进模式
func (f *Feed) Mode() Mode {
	return f.mode
}

// Narrowed 是否处于深链收窄状态（只展示单条）
func (f *Feed) Narrowed() bool {
	return f.narrowed
}

// SetMode 显式切换推进模式
func (f *Feed) SetMode(m Mode) {
	f.mode = m
}

// Current 当前视频（空列表返回 false）
func (f *Feed) Current() (model.Video, bool) {
	if len(f.videos) == 0 {
		return model.Video{}, false
	}
	return f.videos[f.index], true
}

// Advance 由指定驱动推进索引：(i+1) mod N
// 非权威驱动的推进被忽略；N<=1 时为空操作
func (f *Feed) Advance(driver Mode) int {
	if driver != f.mode {
		return f.index
	}
	if len(f.videos) <= 1 {
		return f.index
	}
	f.index = (f.index + 1) % len(f.videos)
	return f.index
}

// SetIndex 手动滚动上报当前可见条目（仅手动模式，越界值收敛到合法区间）
func (f *Feed) SetIndex(i int) int {
	if f.mode != ModeManual {
		return f.index
	}
	if len(f.videos) == 0 {
		f.index = 0
		return 0
	}
	if i < 0 {
		i = 0
	}
	if i >= len(f.videos) {
		i = len(f.videos) - 1
	}
	f.index = i
	return f.index
}

// JumpTo 深链跳转到列表中的指定视频
func (f *Feed) JumpTo(videoID string) bool {
	for i, v := range f.videos {
		if v.ID == videoID {
			f.index = i
			return true
		}
	}
	return false
}

// Narrow 深链收窄：信息流只剩指定的单条（通常是已收藏的视频）
func (f *Feed) Narrow(video model.Video) {
	f.videos = []model.Video{video}
	f.index = 0
	f.narrowed = true
}

// CanAutoAdvance 是否应调度自动推进定时器
// N=0 或 N=1 时绝不调度，收窄状态下也不调度
func (f *Feed) CanAutoAdvance() bool {
	return f.mode == ModeAutoplay && len(f.videos) > 1 && !f.narrowed
}
