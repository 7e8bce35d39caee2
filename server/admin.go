package server

import (
	"encoding/json"
	"net/http"

	"github.com/invopop/jsonschema"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// roomFromQuery ?game=game-1，房间不存在时返回 404
func (m *RoomManager) roomFromQuery(w http.ResponseWriter, r *http.Request) (*Room, bool) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game query", http.StatusBadRequest)
		return nil, false
	}
	room, ok := m.Get(gameID)
	if !ok {
		http.Error(w, "unknown game", http.StatusNotFound)
		return nil, false
	}
	return room, true
}

// HandleAdminConfig 提供房间移动参数的读取与更新（热更新）
// GET /admin/config?game=game-1  返回当前配置
// POST /admin/config?game=game-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room, ok := m.roomFromQuery(w, r)
	if !ok {
		return
	}

	type cfg struct {
		Speed             *float64 `json:"speed,omitempty"`
		StepFraction      *float64 `json:"stepFraction,omitempty"`
		MovementPrecision *int     `json:"movementPrecision,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"tuning": room.session.Tuning(),
			"world":  room.session.World(),
		})
		return
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		t := room.session.Tuning()
		if body.Speed != nil {
			t.Speed = *body.Speed
		}
		if body.StepFraction != nil {
			t.StepFraction = *body.StepFraction
		}
		if body.MovementPrecision != nil {
			t.MovementPrecision = *body.MovementPrecision
		}
		if err := room.session.UpdateTuning(t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tuning": t})
		Log.Infow("config updated", "game", room.ID, "speed", t.Speed, "stepFraction", t.StepFraction)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定房间的运行指标；不带 game 时列出所有房间
// GET /metrics?game=game-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("game") == "" {
		writeJSON(w, http.StatusOK, map[string]any{"games": m.IDs()})
		return
	}
	room, ok := m.roomFromQuery(w, r)
	if !ok {
		return
	}
	snap := room.session.LastSnapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"game":     room.ID,
		"step":     snap.Step,
		"occupied": room.Occupied(),
		"last":     NewSnapshotMessage(snap),
		"metrics":  room.session.Metrics().Snapshot(),
	})
}

// buildSchemas 出入站消息的 JSON Schema
func buildSchemas() map[string]*jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}

	out := reflector.Reflect(new(SnapshotMessage))
	out.Title = "Server update"
	out.Description = "Snapshot published once per physics step"

	in := reflector.Reflect(new(InputMessage))
	in.Title = "Player input"
	in.Description = "Sequenced directional input, applied at the next physics step"

	return map[string]*jsonschema.Schema{
		MessageServerUpdate: out,
		"input":             in,
	}
}

// HandleSchema GET /schema
func HandleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildSchemas())
}

// Routes 注册所有 HTTP 接口
func (m *RoomManager) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", m.HandleWS)
	mux.HandleFunc("/admin/config", m.HandleAdminConfig)
	mux.HandleFunc("/metrics", m.HandleMetrics)
	mux.HandleFunc("/schema", HandleSchema)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}
