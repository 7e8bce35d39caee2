package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Clamp 把位置限制在边界内并定点化。纯函数，不读写任何共享状态
func Clamp(pos mgl64.Vec2, lim Limits, precision int) mgl64.Vec2 {
	x := clampAxis(pos.X(), lim.XMin, lim.XMax)
	y := clampAxis(pos.Y(), lim.YMin, lim.YMax)
	return RoundVec(mgl64.Vec2{x, y}, precision)
}

// clampAxis NaN 按下界处理
func clampAxis(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v <= lo {
		return lo
	}
	if v >= hi {
		return hi
	}
	return v
}
