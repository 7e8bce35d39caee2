package server

import (
	"fmt"
	"sort"
	"sync"

	"duelcore/core"
)

// RoomManager 管理多个房间的生命周期
type RoomManager struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	cfg    core.Config
	sched  core.Scheduler
	nextID int
}

// NewRoomManager 所有房间共用同一份配置与调度器
func NewRoomManager(cfg core.Config, sched core.Scheduler) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		sched: sched,
	}
}

// Join 把玩家放进指定房间；gameID 为空时优先加入只有一人的房间，否则新开一局
func (m *RoomManager) Join(gameID, playerID string, conn *ClientConn) (*Room, core.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gameID == "" {
		gameID = m.findOpenLocked()
	}
	r, err := m.getOrCreateLocked(gameID)
	if err != nil {
		return nil, 0, err
	}
	role, err := r.JoinPlayer(playerID, conn)
	if err != nil {
		if r.Occupied() == 0 {
			m.removeLocked(r)
		}
		return nil, 0, err
	}
	return r, role, nil
}

// Leave 玩家离开，房间空了就停止并移除
func (m *RoomManager) Leave(r *Room, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.LeavePlayer(playerID)
	if r.Occupied() == 0 {
		m.removeLocked(r)
	}
}

// Get 按 ID 查找房间
func (m *RoomManager) Get(id string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	return r, ok
}

// IDs 当前所有房间 ID（有序）
func (m *RoomManager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown 停止所有房间
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		m.removeLocked(r)
	}
}

func (m *RoomManager) findOpenLocked() string {
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if m.rooms[id].Occupied() == 1 {
			return id
		}
	}
	for {
		m.nextID++
		id := fmt.Sprintf("game-%d", m.nextID)
		if _, taken := m.rooms[id]; !taken {
			return id
		}
	}
}

func (m *RoomManager) getOrCreateLocked(id string) (*Room, error) {
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	r, err := NewRoom(id, m.cfg, m.sched)
	if err != nil {
		return nil, fmt.Errorf("create room %s: %w", id, err)
	}
	r.manager = m
	m.rooms[id] = r
	r.StartTicker()
	Log.Infow("room created", "game", id)
	return r, nil
}

func (m *RoomManager) removeLocked(r *Room) {
	if m.rooms[r.ID] != r {
		return
	}
	delete(m.rooms, r.ID)
	r.Stop()
	Log.Infow("room removed", "game", r.ID)
}
