package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

var (
	ErrSessionFull  = errors.New("session already has two players")
	ErrSeatTaken    = errors.New("seat already taken")
	ErrDuplicateID  = errors.New("session id already seated")
	ErrEmptyID      = errors.New("empty session id")
	ErrNilPublisher = errors.New("nil publisher")
)

// seat 名册中的一个固定座位
type seat struct {
	player *PlayerState
	spawn  mgl64.Vec2
	out    Publisher // 空座位为 nil
}

func (st *seat) occupied() bool { return st.player.ID != "" }

// Session 一局双人对战的权威世界：时钟 Tick 与物理 Tick 共享同一把锁
type Session struct {
	ID string

	mu     sync.Mutex
	cfg    Config
	tuning Tuning
	clock  *WorldClock
	roster [rosterSize]seat

	steps    uint64
	lastStep time.Time
	last     Snapshot

	started bool
	cancels []func()

	metrics *Metrics
	log     *zap.SugaredLogger
}

// NewSession 创建会话，两个实体在各自出生点就位，座位为空
func NewSession(id string, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.normalized()
	s := &Session{
		ID:      id,
		cfg:     cfg,
		tuning:  cfg.Tuning,
		clock:   NewWorldClock(cfg.Now),
		metrics: &Metrics{},
		log:     cfg.Logger.With("game", id),
	}
	spawns := [rosterSize]mgl64.Vec2{cfg.HostSpawn, cfg.ClientSpawn}
	for i := range s.roster {
		s.roster[i] = seat{
			player: NewPlayerState(spawns[i], cfg.World, cfg.HalfExtent),
			spawn:  spawns[i],
		}
	}
	s.last = s.buildSnapshot()
	return s, nil
}

// Join 让玩家坐到第一个空座位（房主优先），返回分配到的角色
func (s *Session) Join(sessionID string, out Publisher) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkJoin(sessionID, out); err != nil {
		return 0, err
	}
	for i := range s.roster {
		if !s.roster[i].occupied() {
			s.seat(Role(i), sessionID, out)
			return Role(i), nil
		}
	}
	return 0, ErrSessionFull
}

// JoinAs 坐到指定座位
func (s *Session) JoinAs(role Role, sessionID string, out Publisher) error {
	if role < 0 || int(role) >= rosterSize {
		return fmt.Errorf("unknown role %d", role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkJoin(sessionID, out); err != nil {
		return err
	}
	if s.roster[role].occupied() {
		return fmt.Errorf("%w: %s", ErrSeatTaken, role)
	}
	s.seat(role, sessionID, out)
	return nil
}

func (s *Session) checkJoin(sessionID string, out Publisher) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrEmptyID
	}
	if out == nil {
		return ErrNilPublisher
	}
	if _, ok := s.find(sessionID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, sessionID)
	}
	return nil
}

func (s *Session) seat(role Role, sessionID string, out Publisher) {
	st := &s.roster[role]
	st.player.ID = sessionID
	st.out = out
	s.log.Infow("player joined", "session", sessionID, "role", role.String())
}

// Leave 释放座位，实体回到出生点。返回原先的角色
func (s *Session) Leave(sessionID string) (Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.find(sessionID)
	if !ok {
		return 0, false
	}
	st := &s.roster[role]
	st.player.reset(st.spawn)
	st.out = nil
	s.log.Infow("player left", "session", sessionID, "role", role.String())
	return role, true
}

// Occupied 已入座的玩家数
func (s *Session) Occupied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.roster {
		if s.roster[i].occupied() {
			n++
		}
	}
	return n
}

func (s *Session) find(sessionID string) (Role, bool) {
	if sessionID == "" {
		return 0, false
	}
	for i := range s.roster {
		if s.roster[i].player.ID == sessionID {
			return Role(i), true
		}
	}
	return 0, false
}

// SubmitInput 入站输入只进入缓冲，等下一次物理步处理。
// 未知会话或过旧序号静默丢弃，返回是否被接收
func (s *Session) SubmitInput(sessionID string, keys []Direction, clientTime float64, seq int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.find(sessionID)
	if !ok {
		s.metrics.IncUnknownSession()
		return false
	}
	cmd := InputCommand{Seq: seq, Keys: append([]Direction(nil), keys...), Time: clientTime}
	if !s.roster[role].player.enqueue(cmd) {
		s.metrics.IncStaleDropped()
		return false
	}
	s.metrics.IncAccepted()
	return true
}

// ClockTick 推进本地时钟
func (s *Session) ClockTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Tick()
	s.metrics.IncClockTick()
}

// Step 执行一个物理步：drain 输入 → 移动 → 边界裁剪，然后发布快照。
// 实际间隔只记录到指标，不参与位移计算
func (s *Session) Step() Snapshot {
	start := s.cfg.Now()
	snap, targets, gap := s.advance(start)
	s.publish(snap, targets)
	s.metrics.AddStep(s.cfg.Now().Sub(start).Nanoseconds(), gap.Nanoseconds())
	return snap
}

// advance 在锁内推进两个实体，返回快照与投递目标
func (s *Session) advance(start time.Time) (Snapshot, []delivery, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var gap time.Duration
	if !s.lastStep.IsZero() {
		gap = start.Sub(s.lastStep)
	}
	s.lastStep = start
	for i := range s.roster {
		s.stepPlayer(s.roster[i].player)
	}
	s.steps++
	snap := s.buildSnapshot()
	s.last = snap
	targets := make([]delivery, 0, rosterSize)
	for i := range s.roster {
		if st := s.roster[i]; st.occupied() {
			targets = append(targets, delivery{id: st.player.ID, out: st.out})
		}
	}
	return snap, targets, gap
}

// stepPlayer 只读写该实体自身的状态
func (s *Session) stepPlayer(p *PlayerState) {
	p.PrevPosition = p.Position
	res := Reconcile(p, s.tuning)
	p.Position = addFixed(p.PrevPosition, res.Delta, s.tuning.MovementPrecision)
	p.Position = Clamp(p.Position, p.Limits, s.cfg.CollisionPrecision)
	s.metrics.AddDrain(res.Applied, res.Skipped)
}

// Start 向调度器注册时钟 Tick 与物理 Tick，重复调用无效
func (s *Session) Start(sched Scheduler) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	cancels := []func(){
		sched.ScheduleRepeating(s.cfg.ClockInterval, s.guard("clock", s.ClockTick)),
		sched.ScheduleRepeating(s.cfg.PhysicsInterval, s.guard("physics", func() { s.Step() })),
	}
	s.mu.Lock()
	s.cancels = cancels
	s.mu.Unlock()
	s.log.Infow("session started", "clock", s.cfg.ClockInterval, "physics", s.cfg.PhysicsInterval)
}

// Stop 取消两个周期任务
func (s *Session) Stop() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	wasStarted := s.started
	s.started = false
	s.mu.Unlock()
	for _, c := range cancels {
		if c != nil {
			c()
		}
	}
	if wasStarted {
		s.log.Infow("session stopped", "steps", s.Steps())
	}
}

// Player 返回某个座位实体的副本
func (s *Session) Player(role Role) PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := *s.roster[role].player
	p.Inputs = append([]InputCommand(nil), p.Inputs...)
	return p
}

// LastSnapshot 最近一次物理步的快照
func (s *Session) LastSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// LocalTime 当前会话本地时间
func (s *Session) LocalTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.LocalTime()
}

func (s *Session) Steps() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps
}

func (s *Session) Tuning() Tuning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tuning
}

// UpdateTuning 热更新移动参数，从下一个物理步起生效
func (s *Session) UpdateTuning(t Tuning) error {
	if err := t.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.tuning = t
	s.mu.Unlock()
	s.log.Infow("tuning updated", "speed", t.Speed, "stepFraction", t.StepFraction, "precision", t.MovementPrecision)
	return nil
}

func (s *Session) World() WorldBounds { return s.cfg.World }

func (s *Session) Metrics() *Metrics { return s.metrics }
