package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/gorilla/websocket"

	mdwconfig "github.com/msto63/pnc/foundation/core/config"
	mdwlog "github.com/msto63/pnc/foundation/core/log"
	"github.com/msto63/pnc/foundation/pn"
	"github.com/msto63/pnc/internal/history"
	"github.com/msto63/pnc/pkg/core/health"
)

func newTestServer(t *testing.T, store history.Store) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, DefaultConfig(), store)
}

func newTestServerWith(t *testing.T, cfg Config, store history.Store) *httptest.Server {
	t.Helper()
	srv := New(cfg, Options{Store: store, Logger: mdwlog.NewNop()})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Stop(context.Background())
	})
	return ts
}

func postEval(t *testing.T, ts *httptest.Server, input string) EvalResult {
	t.Helper()
	body := mustJSON(t, EvalRequest{Input: input})
	resp, err := http.Post(ts.URL+"/api/v1/eval", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	var got EvalResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return got
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type rawResponse struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) rawResponse {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	var resp rawResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return resp
}

func TestWebSocketEval(t *testing.T) {
	store := history.NewMemoryStore()
	conn := dial(t, newTestServer(t, store))

	tests := []struct {
		input string
		want  EvalResult
	}{
		{"+ 1 25", EvalResult{Input: "+ 1 25", AST: "(+ 1 25)", Value: "26", OK: true}},
		{"(^ 3 2 1)", EvalResult{Input: "(^ 3 2 1)", AST: "(^ 3 (^ 2 1))", Value: "9", OK: true}},
		{"(* 4)", EvalResult{Input: "(* 4)", AST: "error", Value: "error", OK: false, Code: "PN_SYNTAX"}},
	}

	for i, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			body, _ := json.Marshal(WSMessage{Type: TypeEval, ID: tt.input, Payload: mustJSON(t, EvalRequest{Input: tt.input})})
			resp := roundTrip(t, conn, string(body))

			if resp.Type != TypeResult {
				t.Fatalf("Type = %q, want %q (payload %s)", resp.Type, TypeResult, resp.Payload)
			}
			if resp.ID != tt.input {
				t.Errorf("ID = %q, want %q", resp.ID, tt.input)
			}

			var got EvalResult
			if err := json.Unmarshal(resp.Payload, &got); err != nil {
				t.Fatalf("payload: %v", err)
			}
			if !tt.want.OK && got.Error == "" {
				t.Error("Error text is empty for a rejected expression")
			}
			opts := cmpopts.IgnoreFields(EvalResult{}, "Error", "DurationUS")
			if diff := cmp.Diff(tt.want, got, opts); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}

			entries, _ := store.List(context.Background(), history.Filter{})
			if len(entries) != i+1 || entries[0].Source != history.SourceServer {
				t.Errorf("history = %d entries, want %d from server", len(entries), i+1)
			}
		})
	}
}

func TestWebSocketPingAndErrors(t *testing.T) {
	conn := dial(t, newTestServer(t, nil))

	if resp := roundTrip(t, conn, `{"type":"ping","id":"p1"}`); resp.Type != TypePong || resp.ID != "p1" {
		t.Errorf("ping answered with %+v", resp)
	}

	tests := []struct {
		name string
		msg  string
		code string
	}{
		{"not json", `{not json`, ErrInvalidMessage},
		{"missing payload", `{"type":"eval"}`, ErrInvalidPayload},
		{"bad payload", `{"type":"eval","payload":[1,2]}`, ErrInvalidPayload},
		{"unknown type", `{"type":"shutdown"}`, ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := roundTrip(t, conn, tt.msg)
			if resp.Type != TypeError {
				t.Fatalf("Type = %q, want error", resp.Type)
			}
			var payload ErrorPayload
			if err := json.Unmarshal(resp.Payload, &payload); err != nil {
				t.Fatalf("payload: %v", err)
			}
			if payload.Code != tt.code {
				t.Errorf("Code = %q, want %q", payload.Code, tt.code)
			}
		})
	}

	// The connection survives bad messages
	if resp := roundTrip(t, conn, `{"type":"eval","payload":{"input":"* 6 7"}}`); resp.Type != TypeResult {
		t.Errorf("eval after errors answered with %q", resp.Type)
	}
}

func TestWebSocketReadLimit(t *testing.T) {
	ev := &evaluator{engine: pn.New(pn.Options{Logger: mdwlog.NewNop()}), logger: mdwlog.NewNop()}
	h := newWebSocketHandler(ev, mdwlog.NewNop(), time.Minute)
	if h.readLimit != maxBodySize {
		t.Errorf("readLimit = %d, want %d", h.readLimit, maxBodySize)
	}
	h.readLimit = 64

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	conn := dial(t, ts)

	if resp := roundTrip(t, conn, `{"type":"eval","payload":{"input":"+ 1 2"}}`); resp.Type != TypeResult {
		t.Fatalf("small message answered with %q", resp.Type)
	}

	big := `{"type":"eval","payload":{"input":"` + strings.Repeat("+ 1 ", 64) + `1"}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(big)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	var resp rawResponse
	err := conn.ReadJSON(&resp)
	if !websocket.IsCloseError(err, websocket.CloseMessageTooBig) {
		t.Errorf("oversized message: ReadJSON() error = %v, want close %d", err, websocket.CloseMessageTooBig)
	}
}

func TestHTTPEval(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/v1/eval", "application/json", bytes.NewBufferString(`{"input":"- + 3 2 1"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var got EvalResult
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.AST != "(- (+ 3 2) 1)" || got.Value != "4" || !got.OK {
		t.Errorf("result = %+v", got)
	}

	bad, err := http.Post(ts.URL+"/api/v1/eval", "application/json", bytes.NewBufferString(`nope`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", bad.StatusCode)
	}

	get, err := http.Get(ts.URL + "/api/v1/eval")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	get.Body.Close()
	if get.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", get.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, history.NewMemoryStore())

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != health.StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	var names []string
	for _, c := range report.Checks {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"cache", "engine", "history"}, names); diff != "" {
		t.Errorf("checks mismatch (-want +got):\n%s", diff)
	}
}

func TestResultCache(t *testing.T) {
	store := history.NewMemoryStore()
	ts := newTestServer(t, store)

	first := postEval(t, ts, "(^ 3 2 1)")
	if first.Cached {
		t.Error("first evaluation reported as cached")
	}
	second := postEval(t, ts, "(^ 3 2 1)")
	if !second.Cached {
		t.Error("repeated evaluation was not served from the cache")
	}
	if second.DurationUS != 0 {
		t.Errorf("cached DurationUS = %d, want 0", second.DurationUS)
	}
	opts := cmpopts.IgnoreFields(EvalResult{}, "Cached", "DurationUS")
	if diff := cmp.Diff(first, second, opts); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}

	rejected := postEval(t, ts, "(* 4)")
	again := postEval(t, ts, "(* 4)")
	if !again.Cached || again.Code != rejected.Code || again.OK {
		t.Errorf("rejected input not cached consistently: %+v", again)
	}

	// Cache hits are still part of the history
	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Total != 4 || stats.Errors != 2 {
		t.Errorf("history stats = %+v, want 4 total and 2 errors", stats)
	}
}

func TestResultCacheDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CacheSize = -1
	ts := newTestServerWith(t, cfg, nil)

	postEval(t, ts, "+ 1 2")
	if got := postEval(t, ts, "+ 1 2"); got.Cached {
		t.Error("result cached although caching is disabled")
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := mdwconfig.Default()
	got := ConfigFrom(cfg.Server)

	if got.Host != cfg.Server.Host || got.Port != cfg.Server.Port {
		t.Errorf("ConfigFrom() = %+v", got)
	}
	if got.ReadTimeout != cfg.Server.ReadTimeout.Duration {
		t.Errorf("ReadTimeout = %v, want %v", got.ReadTimeout, cfg.Server.ReadTimeout.Duration)
	}

	if got.CacheSize != 1024 || got.CacheTTL != 10*time.Minute {
		t.Errorf("cache = %d/%v, want 1024/10m", got.CacheSize, got.CacheTTL)
	}

	srv := New(got, Options{Logger: mdwlog.NewNop()})
	defer srv.Stop(context.Background())
	if srv.Address() != "127.0.0.1:8765" {
		t.Errorf("Address() = %q", srv.Address())
	}
	if srv.GRPCAddress() != "127.0.0.1:8766" {
		t.Errorf("GRPCAddress() = %q", srv.GRPCAddress())
	}
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
