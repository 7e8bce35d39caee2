package core

import (
	"sync/atomic"
)

// Metrics 会话运行期的关键指标（用于监控与调试）
type Metrics struct {
	StepCount      int64 // 物理步次数
	ClockTicks     int64 // 时钟 Tick 次数
	InputsAccepted int64 // 进入缓冲的输入数
	UnknownSession int64 // 会话 ID 不匹配而丢弃的输入数
	StaleDropped   int64 // 入站时序号过旧被丢弃的输入数
	SkippedInDrain int64 // drain 时低于水位线被跳过的输入数
	AppliedInDrain int64 // drain 时被应用的输入数
	Published      int64
	PublishFailed  int64
	TickPanics     int64 // 被 Tick 边界拦截的 panic
	TotalStepNs    int64 // 物理步累计耗时（纳秒）
	LastStepGapNs  int64 // 最近两次物理步之间的实际间隔
}

func (m *Metrics) IncAccepted()       { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *Metrics) IncUnknownSession() { atomic.AddInt64(&m.UnknownSession, 1) }
func (m *Metrics) IncStaleDropped()   { atomic.AddInt64(&m.StaleDropped, 1) }
func (m *Metrics) IncPublished()      { atomic.AddInt64(&m.Published, 1) }
func (m *Metrics) IncPublishFailed()  { atomic.AddInt64(&m.PublishFailed, 1) }
func (m *Metrics) IncTickPanic()      { atomic.AddInt64(&m.TickPanics, 1) }
func (m *Metrics) IncClockTick()      { atomic.AddInt64(&m.ClockTicks, 1) }

func (m *Metrics) AddDrain(applied, skipped int) {
	atomic.AddInt64(&m.AppliedInDrain, int64(applied))
	atomic.AddInt64(&m.SkippedInDrain, int64(skipped))
}

func (m *Metrics) AddStep(ns, gapNs int64) {
	atomic.AddInt64(&m.StepCount, 1)
	atomic.AddInt64(&m.TotalStepNs, ns)
	atomic.StoreInt64(&m.LastStepGapNs, gapNs)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	steps := atomic.LoadInt64(&m.StepCount)
	total := atomic.LoadInt64(&m.TotalStepNs)
	var avgMs float64
	if steps > 0 {
		avgMs = float64(total) / float64(steps) / 1e6
	}
	return map[string]any{
		"step_count":       steps,
		"clock_ticks":      atomic.LoadInt64(&m.ClockTicks),
		"inputs_accepted":  atomic.LoadInt64(&m.InputsAccepted),
		"unknown_session":  atomic.LoadInt64(&m.UnknownSession),
		"stale_dropped":    atomic.LoadInt64(&m.StaleDropped),
		"skipped_in_drain": atomic.LoadInt64(&m.SkippedInDrain),
		"applied_in_drain": atomic.LoadInt64(&m.AppliedInDrain),
		"published":        atomic.LoadInt64(&m.Published),
		"publish_failed":   atomic.LoadInt64(&m.PublishFailed),
		"tick_panics":      atomic.LoadInt64(&m.TickPanics),
		"avg_step_ms":      avgMs,
		"last_step_gap_ms": float64(atomic.LoadInt64(&m.LastStepGapNs)) / 1e6,
	}
}
