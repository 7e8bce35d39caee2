package server

import (
	"sync"
	"time"
)

// TickerScheduler 基于 time.Ticker 的调度器：每个注册的回调独占一个协程，
// 同一回调串行执行，慢 Tick 只会推迟下一次
type TickerScheduler struct {
	wg sync.WaitGroup
}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// ScheduleRepeating 按固定间隔调用 fn，返回的 cancel 可重复调用
func (s *TickerScheduler) ScheduleRepeating(interval time.Duration, fn func()) func() {
	done := make(chan struct{})
	var once sync.Once
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				runTick(fn)
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// Wait 等待所有已取消的循环退出
func (s *TickerScheduler) Wait() {
	s.wg.Wait()
}

// runTick 单次 Tick 的 panic 不允许终止循环
func runTick(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			Log.Errorw("scheduled tick panicked", "panic", r)
		}
	}()
	fn()
}
