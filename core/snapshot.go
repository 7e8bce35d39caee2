package core

import "github.com/go-gl/mathgl/mgl64"

// Snapshot 一个物理步结束后的只读状态快照，构造后不再修改
type Snapshot struct {
	Step           uint64
	HostPosition   mgl64.Vec2
	ClientPosition mgl64.Vec2
	HostLastSeq    int64
	ClientLastSeq  int64
	ServerTime     float64
}

// Publisher 出站通道（由传输层实现）。失败不会被重试
type Publisher interface {
	Publish(sessionID string, snap Snapshot) error
}

// PublisherFunc 允许普通函数作为 Publisher
type PublisherFunc func(sessionID string, snap Snapshot) error

func (f PublisherFunc) Publish(sessionID string, snap Snapshot) error {
	return f(sessionID, snap)
}

// buildSnapshot 在锁内调用，所有字段按值拷贝
func (s *Session) buildSnapshot() Snapshot {
	host := s.roster[RoleHost].player
	client := s.roster[RoleClient].player
	return Snapshot{
		Step:           s.steps,
		HostPosition:   host.Position,
		ClientPosition: client.Position,
		HostLastSeq:    host.LastInputSeq,
		ClientLastSeq:  client.LastInputSeq,
		ServerTime:     s.clock.LocalTime(),
	}
}

type delivery struct {
	id  string
	out Publisher
}

// publish 逐个座位投递，失败只计数不上抛
func (s *Session) publish(snap Snapshot, targets []delivery) {
	for _, d := range targets {
		if err := d.out.Publish(d.id, snap); err != nil {
			s.metrics.IncPublishFailed()
			s.log.Debugw("snapshot delivery failed", "session", d.id, "step", snap.Step, "err", err)
			continue
		}
		s.metrics.IncPublished()
	}
}
