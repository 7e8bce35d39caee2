package core

import "time"

// WorldClock 自由运行的本地时钟：每次 Tick 累加距上次 Tick 的真实流逝时间
type WorldClock struct {
	now       func() time.Time
	last      time.Time
	localTime float64
}

// NewWorldClock now 为 nil 时使用 time.Now
func NewWorldClock(now func() time.Time) *WorldClock {
	if now == nil {
		now = time.Now
	}
	return &WorldClock{now: now, last: now(), localTime: initialLocalTime}
}

// Tick 推进本地时间，返回本次测得的间隔
func (c *WorldClock) Tick() time.Duration {
	t := c.now()
	dt := t.Sub(c.last)
	c.last = t
	if dt < 0 {
		// 墙钟回拨时不倒退
		dt = 0
	}
	c.localTime += dt.Seconds()
	return dt
}

// LocalTime 当前本地时间（秒）
func (c *WorldClock) LocalTime() float64 {
	return c.localTime
}
