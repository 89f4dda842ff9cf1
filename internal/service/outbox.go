package service

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/user/myzend/internal/model"
	"github.com/user/myzend/internal/repository"
)

// Outbox 后端同步队列
// 会话内的乐观更新先生效，落库动作进入队列由单个工作协程执行。
// 失败的任务按周期重试，超过最大次数才放弃并记日志，不会静默吞掉错误
type Outbox struct {
	repos      *repository.Repositories
	queue      chan outboxJob
	interval   time.Duration
	maxRetries int
	stop       chan struct{}
	done       chan struct{}
}

type outboxJob struct {
	id       string
	kind     string
	attempts int
	run      func() error
}

// NewOutbox 创建同步队列，interval 为失败重试周期
func NewOutbox(repos *repository.Repositories, interval time.Duration, maxRetries int) *Outbox {
	return &Outbox{
		repos:      repos,
		queue:      make(chan outboxJob, 1024),
		interval:   interval,
		maxRetries: maxRetries,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start 启动工作协程
func (o *Outbox) Start() {
	go o.run()
	log.Printf("同步队列已启动，重试周期 %v，最大重试 %d 次", o.interval, o.maxRetries)
}

// Stop 停止工作协程，等待当前任务结束
func (o *Outbox) Stop() {
	close(o.stop)
	<-o.done
}

// Submit 提交一个落库任务
func (o *Outbox) Submit(kind string, run func() error) {
	j := outboxJob{id: uuid.New().String(), kind: kind, run: run}
	select {
	case o.queue <- j:
	default:
		// 队列打满说明数据库长时间不可用，此时丢弃并记日志
		log.Printf("同步队列已满，丢弃任务 %s (%s)", j.id, j.kind)
	}
}

func (o *Outbox) run() {
	defer close(o.done)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	// retries 只由本协程读写
	var retries []outboxJob

	for {
		select {
		case j := <-o.queue:
			if !o.attempt(&j) {
				retries = append(retries, j)
			}
		case <-ticker.C:
			if len(retries) == 0 {
				continue
			}
			remaining := retries[:0]
			for _, j := range retries {
				if !o.attempt(&j) {
					remaining = append(remaining, j)
				}
			}
			retries = remaining
		case <-o.stop:
			// 退出前把排队和待重试的任务各跑一遍
			for {
				select {
				case j := <-o.queue:
					o.attempt(&j)
				default:
					for _, j := range retries {
						o.attempt(&j)
					}
					return
				}
			}
		}
	}
}

// attempt 执行一次任务，返回 true 表示完成（成功或放弃）
func (o *Outbox) attempt(j *outboxJob) bool {
	err := j.run()
	if err == nil {
		return true
	}
	j.attempts++
	if j.attempts >= o.maxRetries {
		log.Printf("同步任务 %s (%s) 重试 %d 次后放弃: %v", j.id, j.kind, j.attempts, err)
		return true
	}
	log.Printf("同步任务 %s (%s) 第 %d 次失败，稍后重试: %v", j.id, j.kind, j.attempts, err)
	return false
}

// 以下实现 store.Syncer

// SyncInteraction 落库一条互动日志
func (o *Outbox) SyncInteraction(i model.UserInteraction) {
	o.Submit("interaction", func() error {
		record := i
		return o.repos.Interaction.Append(&record)
	})
}

// SyncEmotion 落库一条情绪日志
func (o *Outbox) SyncEmotion(l model.EmotionLog) {
	o.Submit("emotion", func() error {
		return o.repos.EmotionLog.Log(l.UserID, l.Email, l.Emotion)
	})
}

// SyncMark 落库一条收藏/喜欢/不喜欢标记
func (o *Outbox) SyncMark(userID int, list model.MarkList, video model.Video) {
	o.Submit("mark", func() error {
		return o.repos.SavedVideo.Mark(userID, list, video)
	})
}

// SyncUnmark 删除一条标记
func (o *Outbox) SyncUnmark(userID int, list model.MarkList, videoID string) {
	o.Submit("unmark", func() error {
		return o.repos.SavedVideo.Unmark(userID, list, videoID)
	})
}
