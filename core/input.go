package core

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Direction 移动方向（服务端权威解释客户端"意图"）
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "u"
	case DirDown:
		return "d"
	case DirLeft:
		return "l"
	case DirRight:
		return "r"
	default:
		return ""
	}
}

// unit 单个方向对方向向量的贡献，y 轴向下为正
func (d Direction) unit() mgl64.Vec2 {
	switch d {
	case DirUp:
		return mgl64.Vec2{0, -1}
	case DirDown:
		return mgl64.Vec2{0, 1}
	case DirLeft:
		return mgl64.Vec2{-1, 0}
	case DirRight:
		return mgl64.Vec2{1, 0}
	default:
		return mgl64.Vec2{}
	}
}

// ParseDirection 支持单字母 l/r/u/d 与完整单词
func ParseDirection(token string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "u", "up":
		return DirUp, true
	case "d", "down":
		return DirDown, true
	case "l", "left":
		return DirLeft, true
	case "r", "right":
		return DirRight, true
	default:
		return DirNone, false
	}
}

// ParseDirections 解析一组按键，忽略无法识别的项
func ParseDirections(tokens []string) []Direction {
	out := make([]Direction, 0, len(tokens))
	for _, t := range tokens {
		if d, ok := ParseDirection(t); ok {
			out = append(out, d)
		}
	}
	return out
}

// InputCommand 一条带序号的客户端输入
type InputCommand struct {
	Seq  int64
	Keys []Direction
	Time float64 // 客户端上报的时间戳
}

// direction 按键叠加成方向向量，同一条输入中相反方向互相抵消
func (c InputCommand) direction() mgl64.Vec2 {
	var v mgl64.Vec2
	for _, k := range c.Keys {
		v = v.Add(k.unit())
	}
	return v
}

// ReconcileResult 一次 drain 的统计
type ReconcileResult struct {
	Delta   mgl64.Vec2
	Applied int
	Skipped int
}

// Reconcile 消费实体的全部缓冲输入，产出本步唯一的位移向量。
// 序号不高于水位线的输入被跳过；水位线取本次缓冲中的最大序号（只增不减）；
// 无论是否被应用，缓冲都会被清空。
func Reconcile(p *PlayerState, t Tuning) ReconcileResult {
	var res ReconcileResult
	var dir mgl64.Vec2
	watermark := p.LastInputSeq
	for _, cmd := range p.Inputs {
		if cmd.Seq <= p.LastInputSeq {
			res.Skipped++
		} else {
			dir = dir.Add(cmd.direction())
			res.Applied++
		}
		if cmd.Seq > watermark {
			watermark = cmd.Seq
			p.LastInputTime = cmd.Time
		}
	}
	p.LastInputSeq = watermark
	p.Inputs = nil
	res.Delta = MovementFromDirection(dir, t)
	return res
}

// MovementFromDirection 固定步长：位移只取决于方向与每步距离，与实际间隔无关
func MovementFromDirection(dir mgl64.Vec2, t Tuning) mgl64.Vec2 {
	return RoundVec(dir.Mul(t.StepDistance()), t.MovementPrecision)
}
