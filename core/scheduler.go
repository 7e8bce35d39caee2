package core

import "time"

// Scheduler 周期回调调度器，由宿主环境提供。
// 同一个注册的回调不会被并发调用；返回的 cancel 停止后续调用。
type Scheduler interface {
	ScheduleRepeating(interval time.Duration, fn func()) (cancel func())
}

// guard 在 Tick 边界拦截 panic，保证调度循环继续
func (s *Session) guard(name string, fn func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.metrics.IncTickPanic()
				s.log.Errorw("tick panicked", "tick", name, "panic", r)
			}
		}()
		fn()
	}
}
