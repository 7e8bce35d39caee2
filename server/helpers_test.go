package server

import (
	"sync"
	"testing"
	"time"

	"duelcore/core"
)

// manualScheduler 只记录注册，不主动触发
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

func (m *manualScheduler) ScheduleRepeating(interval time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	task := &manualTask{interval: interval, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() {
		m.mu.Lock()
		task.cancelled = true
		m.mu.Unlock()
	}
}

func (m *manualScheduler) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, task := range m.tasks {
		if !task.cancelled {
			n++
		}
	}
	return n
}

func newTestManager(t *testing.T) (*RoomManager, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	m := NewRoomManager(core.DefaultConfig(), sched)
	t.Cleanup(m.Shutdown)
	return m, sched
}
