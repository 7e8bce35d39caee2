package core

import (
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap/zaptest"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type manualTask struct {
	interval  time.Duration
	fn        func()
	cancelled bool
}

// manualScheduler 只在测试显式 fire 时调用回调
type manualScheduler struct {
	tasks []*manualTask
}

func (m *manualScheduler) ScheduleRepeating(interval time.Duration, fn func()) func() {
	task := &manualTask{interval: interval, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() { task.cancelled = true }
}

func (m *manualScheduler) fire(interval time.Duration) int {
	n := 0
	for _, task := range m.tasks {
		if task.interval == interval && !task.cancelled {
			task.fn()
			n++
		}
	}
	return n
}

type recordedPublish struct {
	id   string
	snap Snapshot
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []recordedPublish
	err  error
}

func (r *recordingPublisher) Publish(id string, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, recordedPublish{id: id, snap: snap})
	return r.err
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func newTestSession(t *testing.T, clock *fakeClock) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Now = clock.Now
	cfg.Logger = zaptest.NewLogger(t).Sugar()
	s, err := NewSession("game-test", cfg)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// newSeatedSession 房主 host、加入者 client 均已入座
func newSeatedSession(t *testing.T, clock *fakeClock) (*Session, *recordingPublisher) {
	t.Helper()
	s := newTestSession(t, clock)
	pub := &recordingPublisher{}
	if role, err := s.Join("host", pub); err != nil || role != RoleHost {
		t.Fatalf("join host: role=%v err=%v", role, err)
	}
	if role, err := s.Join("client", pub); err != nil || role != RoleClient {
		t.Fatalf("join client: role=%v err=%v", role, err)
	}
	return s, pub
}

func vec(x, y float64) mgl64.Vec2 { return mgl64.Vec2{x, y} }
