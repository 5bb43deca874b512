package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voidshard/terramap"
)

const smallSettings = `{
	"seed": 7,
	"area": {"min_x": 0, "min_y": 0, "max_x": 10, "max_y": 10},
	"resolution": 1,
	"rainfall": 1,
	"land_water_ratio": 0.5,
	"global_slope_mag": 1,
	"hills": [{"count": 2, "strength": 1, "radius": 3}]
}`

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	url := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until one of type `want`, returning it & the
// types seen before it.
func readUntil(t *testing.T, conn *websocket.Conn, want string) ([]byte, []string) {
	t.Helper()
	seen := []string{}
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read (seen %v): %v", seen, err)
		}
		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &base); err != nil {
			t.Fatal(err)
		}
		if base.Type == want {
			return msg, seen
		}
		seen = append(seen, base.Type)
	}
}

func TestGenerate(t *testing.T) {
	srv := NewServer(log.New(io.Discard, "", 0))
	maps := make(chan *terramap.Map, 1)
	srv.OnMap = func(m *terramap.Map) { maps <- m }
	conn := dial(t, srv)

	req := Request{Type: TypeGenerate, Settings: json.RawMessage(smallSettings), IncludeSites: true}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatal(err)
	}
	raw, seen := readUntil(t, conn, TypeDone)

	var done DoneMsg
	if err := json.Unmarshal(raw, &done); err != nil {
		t.Fatal(err)
	}
	if done.Seed != 7 {
		t.Errorf("expected seed 7 got %d", done.Seed)
	}
	if done.Stats == nil || done.Stats.Sites == 0 || len(done.Sites) != done.Stats.Sites {
		t.Errorf("expected stats & every site, got %+v with %d sites", done.Stats, len(done.Sites))
	}
	for _, typ := range seen {
		if typ != TypeProgress {
			t.Errorf("unexpected %s before DONE", typ)
		}
	}
	if len(seen) == 0 {
		t.Errorf("expected progress before DONE")
	}

	select {
	case m := <-maps:
		if m.Seed != 7 {
			t.Errorf("expected OnMap seed 7 got %d", m.Seed)
		}
	case <-time.After(10 * time.Second):
		t.Errorf("expected OnMap to be called")
	}
}

func TestGenerateInvalidSettings(t *testing.T) {
	conn := dial(t, NewServer(log.New(io.Discard, "", 0)))

	req := Request{Type: TypeGenerate, Settings: json.RawMessage(`{"resolution": -1}`)}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatal(err)
	}
	raw, _ := readUntil(t, conn, TypeError)

	var msg ErrorMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg.Error, "invalid settings") {
		t.Errorf("expected invalid settings error got %q", msg.Error)
	}
}

func TestRejectsUnknownRequest(t *testing.T) {
	conn := dial(t, NewServer(log.New(io.Discard, "", 0)))

	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, _, err := conn.ReadMessage()

	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Errorf("expected policy violation close got %v", err)
	}
}
