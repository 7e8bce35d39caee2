package core

import "github.com/go-gl/mathgl/mgl64"

// Role 座位角色：房主与加入者
type Role int

const (
	RoleHost Role = iota
	RoleClient

	rosterSize = 2
)

func (r Role) String() string {
	switch r {
	case RoleHost:
		return "host"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Limits 实体中心可达的范围（世界尺寸按半宽高内缩）
type Limits struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// LimitsFor 由世界尺寸与半宽高推导边界
func LimitsFor(world WorldBounds, half mgl64.Vec2) Limits {
	return Limits{
		XMin: half.X(),
		XMax: world.Width - half.X(),
		YMin: half.Y(),
		YMax: world.Height - half.Y(),
	}
}

// Contains 判断点是否在边界内（含边界）
func (l Limits) Contains(p mgl64.Vec2) bool {
	return p.X() >= l.XMin && p.X() <= l.XMax && p.Y() >= l.YMin && p.Y() <= l.YMax
}

// PlayerState 服务端权威的实体状态
type PlayerState struct {
	ID string // 会话 ID，座位空闲时为空

	Position     mgl64.Vec2
	PrevPosition mgl64.Vec2
	HalfExtent   mgl64.Vec2
	Limits       Limits

	// Inputs 待处理的输入，按到达顺序排列，每个物理步清空
	Inputs        []InputCommand
	LastInputSeq  int64
	LastInputTime float64
}

// NewPlayerState 在出生点创建实体
func NewPlayerState(spawn mgl64.Vec2, world WorldBounds, half mgl64.Vec2) *PlayerState {
	return &PlayerState{
		Position:     spawn,
		PrevPosition: spawn,
		HalfExtent:   half,
		Limits:       LimitsFor(world, half),
	}
}

// Size 实体完整宽高
func (p PlayerState) Size() mgl64.Vec2 {
	return p.HalfExtent.Mul(2)
}

// enqueue 追加一条输入。序号不高于水位线或已缓冲的最后一条时丢弃，返回是否接收
func (p *PlayerState) enqueue(cmd InputCommand) bool {
	if cmd.Seq <= p.LastInputSeq {
		return false
	}
	if n := len(p.Inputs); n > 0 && cmd.Seq <= p.Inputs[n-1].Seq {
		return false
	}
	p.Inputs = append(p.Inputs, cmd)
	return true
}

// reset 座位释放时恢复到出生状态
func (p *PlayerState) reset(spawn mgl64.Vec2) {
	p.ID = ""
	p.Position = spawn
	p.PrevPosition = spawn
	p.Inputs = nil
	p.LastInputSeq = 0
	p.LastInputTime = 0
}
