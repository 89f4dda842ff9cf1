package service

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRunsSubmittedJob(t *testing.T) {
	o := NewOutbox(nil, 10*time.Millisecond, 3)
	o.Start()
	defer o.Stop()

	var ran int32
	o.Submit("test", func() error {
		atomic.AddInt32(&ran, 1)
		return nil
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ran) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestOutboxRetriesUntilSuccess(t *testing.T) {
	o := NewOutbox(nil, 10*time.Millisecond, 5)
	o.Start()
	defer o.Stop()

	var attempts int32
	o.Submit("flaky", func() error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return fmt.Errorf("base de datos caída")
		}
		return nil
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) == 3
	}, time.Second, 5*time.Millisecond)

	// 成功后不再重试
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestOutboxGivesUpAfterMaxRetries(t *testing.T) {
	o := NewOutbox(nil, 10*time.Millisecond, 3)
	o.Start()
	defer o.Stop()

	var attempts int32
	o.Submit("broken", func() error {
		atomic.AddInt32(&attempts, 1)
		return fmt.Errorf("siempre falla")
	})

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) == 3
	}, time.Second, 5*time.Millisecond)

	// 达到上限后放弃，不再增加
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestOutboxStopDrainsQueue(t *testing.T) {
	o := NewOutbox(nil, time.Hour, 3)
	o.Start()

	var ran int32
	for i := 0; i < 5; i++ {
		o.Submit("drain", func() error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}

	o.Stop()
	assert.Equal(t, int32(5), atomic.LoadInt32(&ran))
}
