package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"duelcore/core"
)

var (
	errConnClosed = errors.New("connection closed")
	errQueueFull  = errors.New("send queue full")
)

var _ core.Publisher = (*ClientConn)(nil)

// ClientConn 负责发送（写）数据到客户端的轻量包装，同时作为快照的出站通道
type ClientConn struct {
	ws    *websocket.Conn
	codec Codec

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn, codec Codec) *ClientConn {
	return &ClientConn{
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, 64),
	}
}

// Publish 实现 core.Publisher：编码后入队，不阻塞物理 Tick
func (c *ClientConn) Publish(_ string, snap core.Snapshot) error {
	b, err := c.codec.Marshal(NewSnapshotMessage(snap))
	if err != nil {
		return err
	}
	return c.Enqueue(b)
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		// 为了实时性，丢弃本条（防止阻塞 Tick）
		return errQueueFull
	}
}

// Close 关闭发送队列，写协程随之退出并关闭底层连接
func (c *ClientConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(c.codec.FrameType(), msg); err != nil {
			return
		}
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}

// readPump 读取客户端输入，转交给会话缓冲
func (c *ClientConn) readPump(room *Room, playerID string) {
	defer c.ws.Close()
	// 读泵退出时释放座位
	defer room.RequestLeave(playerID)
	c.ws.SetReadLimit(1 << 16)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			Log.Debugw("read pump stopped", "game", room.ID, "player", playerID, "err", err)
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		var im InputMessage
		if err := c.codec.Unmarshal(payload, &im); err != nil {
			Log.Debugw("discarding malformed message", "player", playerID, "err", err)
			continue
		}
		if !im.valid() {
			continue
		}
		room.OnInput(playerID, im)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?game=game-1&player=alice&codec=json
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	playerID := q.Get("player")
	if playerID == "" {
		http.Error(w, "missing player query", http.StatusBadRequest)
		return
	}
	codec, err := CodecByName(q.Get("codec"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade failed", "player", playerID, "err", err)
		return
	}

	client := NewClientConn(ws, codec)
	room, role, err := m.Join(q.Get("game"), playerID, client)
	if err != nil {
		Log.Infow("join refused", "game", q.Get("game"), "player", playerID, "err", err)
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = ws.Close()
		return
	}
	Log.Infow("player connected", "game", room.ID, "player", playerID, "role", role.String(), "codec", codec.Name())

	go client.writePump()
	go client.readPump(room, playerID)
}
