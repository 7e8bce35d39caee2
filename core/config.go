package core

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// ErrInvalidConfig 配置不合法
var ErrInvalidConfig = errors.New("invalid session config")

const (
	DefaultWorldWidth  = 720
	DefaultWorldHeight = 480
	DefaultHalfExtent  = 8
	DefaultPlayerSpeed = 120
	// DefaultStepFraction 每个物理步的名义时长（秒），与 PhysicsInterval 对应
	DefaultStepFraction = 0.015

	DefaultMovementPrecision  = 3
	DefaultCollisionPrecision = 4
	// MaxPrecision 小数位上限，再大 10^n 会溢出
	MaxPrecision = 10

	DefaultClockInterval   = 4 * time.Millisecond
	DefaultPhysicsInterval = 15 * time.Millisecond

	// 时钟初值沿用 16ms 一帧
	initialLocalTime = 0.016
)

// WorldBounds 世界尺寸，会话创建时确定
type WorldBounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Tuning 可在运行期热更新的移动参数
type Tuning struct {
	Speed        float64 `json:"speed"`
	StepFraction float64 `json:"stepFraction"`
	// MovementPrecision 移动增量与位置相加时保留的小数位
	MovementPrecision int `json:"movementPrecision"`
}

// StepDistance 每个激活轴每步移动的固定距离
func (t Tuning) StepDistance() float64 {
	return t.Speed * t.StepFraction
}

func (t Tuning) validate() error {
	if t.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, t.Speed)
	}
	if t.StepFraction <= 0 {
		return fmt.Errorf("%w: step fraction must be positive, got %v", ErrInvalidConfig, t.StepFraction)
	}
	if t.MovementPrecision < 0 || t.MovementPrecision > MaxPrecision {
		return fmt.Errorf("%w: movement precision must be in [0,%d], got %d", ErrInvalidConfig, MaxPrecision, t.MovementPrecision)
	}
	if d := t.StepDistance(); math.IsInf(d, 0) || math.IsNaN(d) {
		return fmt.Errorf("%w: step distance %v is not finite", ErrInvalidConfig, d)
	}
	return nil
}

// Config 会话配置
type Config struct {
	World      WorldBounds
	HalfExtent mgl64.Vec2
	Tuning     Tuning

	CollisionPrecision int

	HostSpawn   mgl64.Vec2
	ClientSpawn mgl64.Vec2

	ClockInterval   time.Duration
	PhysicsInterval time.Duration

	// Now 墙钟来源，测试中可替换；nil 时为 time.Now
	Now    func() time.Time
	Logger *zap.SugaredLogger
}

// DefaultConfig 返回 720x480 世界、速度 120 的默认配置
func DefaultConfig() Config {
	return Config{
		World:      WorldBounds{Width: DefaultWorldWidth, Height: DefaultWorldHeight},
		HalfExtent: mgl64.Vec2{DefaultHalfExtent, DefaultHalfExtent},
		Tuning: Tuning{
			Speed:             DefaultPlayerSpeed,
			StepFraction:      DefaultStepFraction,
			MovementPrecision: DefaultMovementPrecision,
		},
		CollisionPrecision: DefaultCollisionPrecision,
		HostSpawn:          mgl64.Vec2{20, 20},
		ClientSpawn:        mgl64.Vec2{500, 200},
		ClockInterval:      DefaultClockInterval,
		PhysicsInterval:    DefaultPhysicsInterval,
	}
}

// normalized 补齐零值字段
func (cfg Config) normalized() Config {
	def := DefaultConfig()
	n := cfg
	if n.ClockInterval <= 0 {
		n.ClockInterval = def.ClockInterval
	}
	if n.PhysicsInterval <= 0 {
		n.PhysicsInterval = def.PhysicsInterval
	}
	if n.Now == nil {
		n.Now = time.Now
	}
	if n.Logger == nil {
		n.Logger = zap.NewNop().Sugar()
	}
	return n
}

// Validate 检查世界尺寸与实体大小是否能放下一个实体
func (cfg Config) Validate() error {
	if cfg.World.Width <= 0 || cfg.World.Height <= 0 {
		return fmt.Errorf("%w: world %vx%v", ErrInvalidConfig, cfg.World.Width, cfg.World.Height)
	}
	if cfg.HalfExtent.X() < 0 || cfg.HalfExtent.Y() < 0 {
		return fmt.Errorf("%w: negative half extent", ErrInvalidConfig)
	}
	if 2*cfg.HalfExtent.X() > cfg.World.Width || 2*cfg.HalfExtent.Y() > cfg.World.Height {
		return fmt.Errorf("%w: entity %v does not fit world %vx%v", ErrInvalidConfig, cfg.HalfExtent, cfg.World.Width, cfg.World.Height)
	}
	if cfg.CollisionPrecision < 0 || cfg.CollisionPrecision > MaxPrecision {
		return fmt.Errorf("%w: collision precision must be in [0,%d], got %d", ErrInvalidConfig, MaxPrecision, cfg.CollisionPrecision)
	}
	return cfg.Tuning.validate()
}
