package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/emotiv/cortexgo/pkg/cortexerr"
	"github.com/emotiv/cortexgo/pkg/protocol"
)

var upgrader = websocket.Upgrader{}

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

func respond(conn *websocket.Conn, result any) error {
	var req map[string]json.RawMessage
	if err := conn.ReadJSON(&req); err != nil {
		return err
	}
	var id uint64
	_ = json.Unmarshal(req["id"], &id)
	return conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func respondError(conn *websocket.Conn, code int, message string) error {
	var req map[string]json.RawMessage
	if err := conn.ReadJSON(&req); err != nil {
		return err
	}
	var id uint64
	_ = json.Unmarshal(req["id"], &id)
	return conn.WriteJSON(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	})
}

func dialClient(t *testing.T, url string) *CortexClient {
	t.Helper()
	c, err := Connect(context.Background(), Config{URL: url, RequestTimeout: 2 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Disconnect() })
	return c
}

func TestGetCortexInfoDecodesResult(t *testing.T) {
	url := startServer(t, func(conn *websocket.Conn) {
		_ = respond(conn, protocol.CortexInfo{Version: "2.8.0", Build: "100"})
	})
	c := dialClient(t, url)

	info, err := c.GetCortexInfo(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Version != "2.8.0" {
		t.Errorf("version = %q", info.Version)
	}
}

func TestAuthorizeRejectsMissingCredentialsLocally(t *testing.T) {
	url := startServer(t, func(conn *websocket.Conn) {
		var req map[string]json.RawMessage
		if err := conn.ReadJSON(&req); err == nil {
			t.Error("server should not be contacted for a locally-invalid request")
		}
	})
	c := dialClient(t, url)

	_, err := c.Authorize(context.Background(), protocol.AuthorizeParams{})
	if cortexerr.KindOf(err) != cortexerr.KindInvalidArgument {
		t.Fatalf("err kind = %v, want InvalidArgument", cortexerr.KindOf(err))
	}
}

func TestServerErrorMapsToTypedCortexError(t *testing.T) {
	url := startServer(t, func(conn *websocket.Conn) {
		_ = respondError(conn, protocol.ErrInvalidCortexToken, "invalid token")
	})
	c := dialClient(t, url)

	_, err := c.GetUserInformation(context.Background(), protocol.UserInfoParams{CortexToken: "bad"})
	if cortexerr.KindOf(err) != cortexerr.KindTokenInvalid {
		t.Fatalf("err kind = %v, want TokenInvalid", cortexerr.KindOf(err))
	}
}

func TestTrainingValidateBlocksBadParamsBeforeWire(t *testing.T) {
	url := startServer(t, func(conn *websocket.Conn) {
		var req map[string]json.RawMessage
		if err := conn.ReadJSON(&req); err == nil {
			t.Error("server should not be contacted for a locally-invalid request")
		}
	})
	c := dialClient(t, url)

	_, err := c.MentalCommandActiveAction(context.Background(), protocol.MentalCommandActiveActionParams{
		Status: protocol.StatusSet,
	})
	if err == nil {
		t.Fatal("expected validation error for missing session/profile and empty action")
	}
}
