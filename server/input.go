package server

import (
	"strings"

	"duelcore/core"
)

// 入站输入的 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"input","keys":["l","u"],"time":12.345,"seq":7}
type InputMessage struct {
	Type string   `json:"type" msgpack:"type" jsonschema:"enum=input"`
	Keys []string `json:"keys" msgpack:"keys" jsonschema:"description=direction tokens l/r/u/d or left/right/up/down"`
	Time float64  `json:"time" msgpack:"time" jsonschema:"description=client local time in seconds"`
	Seq  int64    `json:"seq" msgpack:"seq" jsonschema:"description=strictly increasing per player"`
}

// valid 只接受 input 类型且序号为正的消息
func (m InputMessage) valid() bool {
	return strings.EqualFold(m.Type, "input") && m.Seq > 0
}

func (m InputMessage) directions() []core.Direction {
	return core.ParseDirections(m.Keys)
}
