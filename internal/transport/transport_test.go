package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// startServer runs handler against every accepted connection and returns
// the ws:// URL to dial it at.
func startServer(t *testing.T, handler func(*websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *Transport {
	t.Helper()
	tr, err := Connect(context.Background(), Config{URL: url})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestCallRoundTrip(t *testing.T) {
	url := startServer(t, func(conn *websocket.Conn) {
		var req map[string]json.RawMessage
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		var id uint64
		_ = json.Unmarshal(req["id"], &id)
		resp := map[string]any{"jsonrpc": "2.0", "id": id, "result": map[string]string{"version": "2.0"}}
		_ = conn.WriteJSON(resp)
	})

	tr := dial(t, url)
	raw, err := tr.Call(context.Background(), "getCortexInfo", nil, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	var result struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatal(err)
	}
	if result.Version != "2.0" {
		t.Errorf("version = %q", result.Version)
	}
	if tr.PendingCount() != 0 {
		t.Errorf("pending count = %d, want 0", tr.PendingCount())
	}
}

func TestCallTimeoutCleansUpRegistry(t *testing.T) {
	url := startServer(t, func(conn *websocket.Conn) {
		// Read the request but never reply.
		var req map[string]json.RawMessage
		_ = conn.ReadJSON(&req)
		time.Sleep(time.Second)
	})

	tr := dial(t, url)
	_, err := tr.Call(context.Background(), "queryHeadsets", nil, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if tr.PendingCount() != 0 {
		t.Errorf("pending count = %d, want 0 after timeout", tr.PendingCount())
	}
}

func TestDisconnectResolvesOutstandingCalls(t *testing.T) {
	ready := make(chan struct{})
	url := startServer(t, func(conn *websocket.Conn) {
		var req map[string]json.RawMessage
		_ = conn.ReadJSON(&req)
		close(ready)
		conn.Close()
	})

	tr := dial(t, url)
	_, err := tr.Call(context.Background(), "queryHeadsets", nil, 2*time.Second)
	if err == nil {
		t.Fatal("expected error after server disconnect")
	}
	if tr.PendingCount() != 0 {
		t.Errorf("pending count = %d, want 0", tr.PendingCount())
	}
}

func TestRequestIDsAreMonotonic(t *testing.T) {
	var seenIDs []uint64
	done := make(chan struct{})
	url := startServer(t, func(conn *websocket.Conn) {
		for i := 0; i < 2; i++ {
			var req map[string]json.RawMessage
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			var id uint64
			_ = json.Unmarshal(req["id"], &id)
			seenIDs = append(seenIDs, id)
			_ = conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": id, "result": map[string]any{}})
		}
		close(done)
	})

	tr := dial(t, url)
	if _, err := tr.Call(context.Background(), "m1", nil, time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Call(context.Background(), "m2", nil, time.Second); err != nil {
		t.Fatal(err)
	}
	<-done

	if len(seenIDs) != 2 || seenIDs[0] != 1 || seenIDs[1] != 2 {
		t.Errorf("seen ids = %v, want [1 2]", seenIDs)
	}
}

func TestStreamEventRoutedToSubscription(t *testing.T) {
	url := startServer(t, func(conn *websocket.Conn) {
		event := map[string]any{"sid": "s1", "time": 1.0, "eeg": []any{1, 0, 2.0, 3.0, 0.0, 0, []any{}}}
		_ = conn.WriteJSON(event)
	})

	tr := dial(t, url)
	sub := tr.Subscribe("eeg", "s1", 4)

	select {
	case v := <-sub.Recv():
		t.Logf("received %+v", v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream event")
	}
}
