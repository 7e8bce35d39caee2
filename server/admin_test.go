package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAdminConfigUpdatesTuning(t *testing.T) {
	m, _ := newTestManager(t)
	if _, _, err := m.Join("duel", "alice", NewClientConn(nil, JSONCodec)); err != nil {
		t.Fatalf("join: %v", err)
	}
	mux := http.NewServeMux()
	m.Routes(mux)

	req := httptest.NewRequest(http.MethodPost, "/admin/config?game=duel", strings.NewReader(`{"speed":200}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	room, _ := m.Get("duel")
	if got := room.Session().Tuning().Speed; got != 200 {
		t.Fatalf("speed not updated: %v", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/config?game=duel", strings.NewReader(`{"stepFraction":-1}`))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid tuning, got %d", rec.Code)
	}

	for _, body := range []string{`{"movementPrecision":400}`, `{"speed":1e308,"stepFraction":100}`} {
		req = httptest.NewRequest(http.MethodPost, "/admin/config?game=duel", strings.NewReader(body))
		rec = httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}
	if got := room.Session().Tuning(); got.Speed != 200 || got.MovementPrecision != 3 {
		t.Fatalf("rejected update leaked into tuning: %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/config?game=missing", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m, _ := newTestManager(t)
	room, _, err := m.Join("duel", "alice", NewClientConn(nil, JSONCodec))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	room.OnInput("alice", InputMessage{Type: "input", Keys: []string{"d"}, Seq: 1})
	room.Session().Step()

	mux := http.NewServeMux()
	m.Routes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics?game=duel", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Step     uint64          `json:"step"`
		Occupied int             `json:"occupied"`
		Last     SnapshotMessage `json:"last"`
		Metrics  map[string]any  `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Step != 1 || body.Occupied != 1 || body.Last.HostPos.Y != 21.8 || body.Last.HostSeq != 1 {
		t.Fatalf("unexpected metrics payload %s", rec.Body.String())
	}
	if body.Metrics["inputs_accepted"] != 1.0 {
		t.Fatalf("unexpected counters %v", body.Metrics)
	}
}

func TestSchemaEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleSchema(rec, httptest.NewRequest(http.MethodGet, "/schema", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{MessageServerUpdate, "input"} {
		if len(body[key]) == 0 {
			t.Fatalf("missing schema %q", key)
		}
	}
	if !strings.Contains(string(body[MessageServerUpdate]), `"his"`) {
		t.Fatalf("snapshot schema lacks his field: %s", body[MessageServerUpdate])
	}
}
