package server

import (
	"duelcore/core"
)

// Room 一局对战：权威状态由 core.Session 维护，时钟与物理两个周期任务推进
type Room struct {
	ID string

	session *core.Session
	sched   core.Scheduler
	manager *RoomManager

	conns map[string]*ClientConn // 仅在 manager 锁内读写
}

// NewRoom 创建房间，尚未开始 Tick
func NewRoom(id string, cfg core.Config, sched core.Scheduler) (*Room, error) {
	cfg.Logger = Log.With("component", "session")
	s, err := core.NewSession(id, cfg)
	if err != nil {
		return nil, err
	}
	return &Room{
		ID:      id,
		session: s,
		sched:   sched,
		conns:   make(map[string]*ClientConn),
	}, nil
}

// StartTicker 注册时钟 Tick 与物理 Tick
func (r *Room) StartTicker() {
	r.session.Start(r.sched)
}

// Session 底层会话
func (r *Room) Session() *core.Session {
	return r.session
}

// JoinPlayer 将玩家加入房间，座位已满时返回错误
func (r *Room) JoinPlayer(id string, conn *ClientConn) (core.Role, error) {
	role, err := r.session.Join(id, conn)
	if err != nil {
		return role, err
	}
	r.conns[id] = conn
	return role, nil
}

// LeavePlayer 将玩家移出房间并关闭连接
func (r *Room) LeavePlayer(id string) {
	r.session.Leave(id)
	if c, ok := r.conns[id]; ok {
		c.Close()
		delete(r.conns, id)
	}
}

// OnInput 入站输入（不立即改变位置），仅进入缓冲，等下一次物理步处理
func (r *Room) OnInput(playerID string, im InputMessage) bool {
	return r.session.SubmitInput(playerID, im.directions(), im.Time, im.Seq)
}

// RequestLeave 读泵退出时调用，空房间会被回收
func (r *Room) RequestLeave(playerID string) {
	if r.manager != nil {
		r.manager.Leave(r, playerID)
		return
	}
	r.LeavePlayer(playerID)
}

// Occupied 已入座人数
func (r *Room) Occupied() int {
	return r.session.Occupied()
}

// Stop 停止周期任务并关闭所有连接
func (r *Room) Stop() {
	r.session.Stop()
	for id, c := range r.conns {
		c.Close()
		delete(r.conns, id)
	}
}
