package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RoundToPrecision 将数值保留到 decimals 位小数（定点化，保证两端计算结果一致）
func RoundToPrecision(v float64, decimals int) float64 {
	if decimals < 0 {
		decimals = 0
	}
	scale := math.Pow(10, float64(decimals))
	r := math.Round(v*scale) / scale
	if r == 0 {
		// 去掉 -0，避免序列化出 "-0"
		return 0
	}
	return r
}

// RoundVec 对二维向量逐轴定点化
func RoundVec(v mgl64.Vec2, decimals int) mgl64.Vec2 {
	return mgl64.Vec2{RoundToPrecision(v.X(), decimals), RoundToPrecision(v.Y(), decimals)}
}

// addFixed 向量相加后定点化
func addFixed(a, b mgl64.Vec2, decimals int) mgl64.Vec2 {
	return RoundVec(a.Add(b), decimals)
}
