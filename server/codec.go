package server

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"duelcore/core"
)

// MessageServerUpdate 出站快照消息类型
const MessageServerUpdate = "serverupdate"

// Vec 线上的二维坐标
type Vec struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// SnapshotMessage 快照的线上格式，沿用短字段名
type SnapshotMessage struct {
	Type      string  `json:"type" msgpack:"type" jsonschema:"enum=serverupdate"`
	HostPos   Vec     `json:"hp" msgpack:"hp" jsonschema:"description=host position"`
	ClientPos Vec     `json:"cp" msgpack:"cp" jsonschema:"description=client position"`
	HostSeq   int64   `json:"his" msgpack:"his" jsonschema:"description=last host input applied"`
	ClientSeq int64   `json:"cis" msgpack:"cis" jsonschema:"description=last client input applied"`
	Time      float64 `json:"t" msgpack:"t" jsonschema:"description=server local time in seconds"`
}

// NewSnapshotMessage 把快照转换为线上格式
func NewSnapshotMessage(s core.Snapshot) SnapshotMessage {
	return SnapshotMessage{
		Type:      MessageServerUpdate,
		HostPos:   Vec{X: s.HostPosition.X(), Y: s.HostPosition.Y()},
		ClientPos: Vec{X: s.ClientPosition.X(), Y: s.ClientPosition.Y()},
		HostSeq:   s.HostLastSeq,
		ClientSeq: s.ClientLastSeq,
		Time:      s.ServerTime,
	}
}

// Codec 连接级别的编解码方式
type Codec interface {
	Name() string
	// FrameType 对应的 WebSocket 帧类型
	FrameType() int
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) FrameType() int                     { return websocket.TextMessage }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string                       { return "msgpack" }
func (msgpackCodec) FrameType() int                     { return websocket.BinaryMessage }
func (msgpackCodec) Marshal(v any) ([]byte, error)      { return msgpack.Marshal(v) }
func (msgpackCodec) Unmarshal(data []byte, v any) error { return msgpack.Unmarshal(data, v) }

var (
	JSONCodec    Codec = jsonCodec{}
	MsgpackCodec Codec = msgpackCodec{}
)

// CodecByName 空字符串返回 JSON
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSONCodec, nil
	case "msgpack", "mp":
		return MsgpackCodec, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
