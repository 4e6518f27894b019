package resilient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/emotiv/cortexgo/config"
	"github.com/emotiv/cortexgo/pkg/protocol"
)

var upgrader = websocket.Upgrader{}

func newFakeServer(t *testing.T, handler func(attempt int32, conn *websocket.Conn)) string {
	t.Helper()
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := attempts.Add(1)
		handler(n, conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readRequest(conn *websocket.Conn) (uint64, string, json.RawMessage, error) {
	var req struct {
		ID     uint64          `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := conn.ReadJSON(&req); err != nil {
		return 0, "", nil, err
	}
	return req.ID, req.Method, req.Params, nil
}

func writeResult(conn *websocket.Conn, id uint64, result any) error {
	return conn.WriteJSON(map[string]any{"jsonrpc": "2.0", "id": id, "result": result})
}

func writeError(conn *websocket.Conn, id uint64, code int, message string) error {
	return conn.WriteJSON(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": message},
	})
}

func baseCfg(url string) config.Config {
	cfg := *config.Default()
	cfg.CortexURL = url
	cfg.ClientID = "cid"
	cfg.ClientSecret = "secret"
	cfg.Reconnect.Base = 5 * time.Millisecond
	cfg.Reconnect.Max = 20 * time.Millisecond
	return cfg
}

func authorize(t *testing.T, conn *websocket.Conn, token string) {
	t.Helper()
	id, method, _, err := readRequest(conn)
	require.NoError(t, err)
	require.Equal(t, protocol.MethodAuthorize, method)
	require.NoError(t, writeResult(conn, id, protocol.AuthorizeResult{CortexToken: token}))
}

func TestConnectAuthorizesAndReachesAuthenticated(t *testing.T) {
	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		authorize(t, conn, "tok-1")
	})

	rc := New(baseCfg(url), nil)
	events, cancel := rc.Events(4)
	defer cancel()

	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	require.Equal(t, StateAuthenticated, rc.State())
	require.Equal(t, "tok-1", rc.currentToken())

	select {
	case evt := <-events:
		require.Equal(t, StateAuthenticated, evt.State)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for authenticated event")
	}
}

func TestTokenInvalidTriggersRefreshAndRetrySucceeds(t *testing.T) {
	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		authorize(t, conn, "tok-1")

		queried := false
		for {
			id, method, _, err := readRequest(conn)
			if err != nil {
				return
			}
			switch method {
			case protocol.MethodQueryHeadsets:
				if !queried {
					queried = true
					_ = writeError(conn, id, protocol.ErrInvalidCortexToken, "invalid token")
				} else {
					_ = writeResult(conn, id, []protocol.HeadsetInfo{{ID: "EPOC-1", Status: "connected"}})
				}
			case protocol.MethodGenerateNewToken:
				_ = writeResult(conn, id, protocol.GenerateNewTokenResult{CortexToken: "tok-2"})
			}
		}
	})

	rc := New(baseCfg(url), nil)
	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	headsets, err := rc.QueryHeadsets(context.Background(), protocol.QueryHeadsetsParams{})
	require.NoError(t, err)
	require.Len(t, headsets, 1)
	require.Equal(t, "EPOC-1", headsets[0].ID)
	require.Equal(t, "tok-2", rc.currentToken())
}

func TestPermanentErrorSurfacesWithoutReconnect(t *testing.T) {
	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		require.LessOrEqual(t, attempt, int32(1), "no reconnect attempt expected")
		authorize(t, conn, "tok-1")

		for {
			id, method, _, err := readRequest(conn)
			if err != nil {
				return
			}
			if method == protocol.MethodQueryHeadsets {
				_ = writeError(conn, id, protocol.ErrInvalidLicenseID, "not allowed")
			}
		}
	})

	rc := New(baseCfg(url), nil)
	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	_, err := rc.QueryHeadsets(context.Background(), protocol.QueryHeadsetsParams{})
	require.Error(t, err)
	require.Equal(t, StateAuthenticated, rc.State())
}

func TestReconnectReplaysActiveSubscription(t *testing.T) {
	firstGone := make(chan struct{})

	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		authorize(t, conn, "tok-1")

		id, method, params, err := readRequest(conn)
		require.NoError(t, err)
		require.Equal(t, protocol.MethodSubscribe, method)
		var sp protocol.SubscribeParams
		require.NoError(t, json.Unmarshal(params, &sp))
		require.NoError(t, writeResult(conn, id, protocol.SubscribeResult{
			Success: []protocol.StreamSuccess{{StreamName: sp.Streams[0], Cols: mustMarshal([]any{"time", "COM"})}},
		}))

		if attempt == 1 {
			require.NoError(t, conn.WriteJSON(map[string]any{
				"sid":  sp.Session,
				"com":  []any{"neutral", 1.0},
				"time": 1.0,
			}))
			close(firstGone)
			conn.Close()
			return
		}

		defer conn.Close()
		for {
			id, method, _, err := readRequest(conn)
			if err != nil {
				return
			}
			if method == protocol.MethodQueryHeadsets {
				_ = writeResult(conn, id, []protocol.HeadsetInfo{{ID: "EPOC-1", Status: "connected"}})
			}
		}
	})

	rc := New(baseCfg(url), nil)
	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	subs, failures, err := rc.Subscribe(context.Background(), "sess-1", []string{protocol.StreamCom}, 4)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Contains(t, subs, protocol.StreamCom)
	sample := subs[protocol.StreamCom]

	select {
	case <-sample.Recv():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first stream sample")
	}

	<-firstGone

	require.Eventually(t, func() bool {
		_, err := rc.QueryHeadsets(context.Background(), protocol.QueryHeadsetsParams{})
		return err == nil
	}, 2*time.Second, 10*time.Millisecond, "expected the client to reconnect and recover")

	require.Equal(t, StateSubscribed, rc.State())
}

func TestConcurrentCallersShareSingleReconnect(t *testing.T) {
	var totalConns atomic.Int32
	ready := make(chan *websocket.Conn, 1)

	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		totalConns.Store(attempt)
		authorize(t, conn, "tok-1")
		if attempt == 1 {
			ready <- conn
			return
		}
		for {
			id, method, _, err := readRequest(conn)
			if err != nil {
				return
			}
			if method == protocol.MethodQueryHeadsets {
				_ = writeResult(conn, id, []protocol.HeadsetInfo{{ID: "EPOC-1", Status: "connected"}})
			}
		}
	})

	rc := New(baseCfg(url), nil)
	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	conn := <-ready
	require.NoError(t, conn.Close())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = rc.QueryHeadsets(context.Background(), protocol.QueryHeadsetsParams{})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, int32(2), totalConns.Load(), "a racing caller that lost the reconnect should reuse the winner's connection, not redial")
}

func TestTimeoutRetriesWithoutReconnect(t *testing.T) {
	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		require.Equal(t, int32(1), attempt, "timeout must not trigger a reconnect dial")
		authorize(t, conn, "tok-1")

		stalled := false
		for {
			id, method, _, err := readRequest(conn)
			if err != nil {
				return
			}
			if method != protocol.MethodQueryHeadsets {
				continue
			}
			if !stalled {
				stalled = true
				continue // never answer the first request; it times out client-side
			}
			_ = writeResult(conn, id, []protocol.HeadsetInfo{{ID: "EPOC-1", Status: "connected"}})
		}
	})

	cfg := baseCfg(url)
	cfg.RequestTimeout = 50 * time.Millisecond
	rc := New(cfg, nil)
	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	headsets, err := rc.QueryHeadsets(context.Background(), protocol.QueryHeadsetsParams{})
	require.NoError(t, err)
	require.Len(t, headsets, 1)
	require.Equal(t, StateAuthenticated, rc.State())
}

func TestHealthMonitorForcesReconnectOnRepeatedTimeouts(t *testing.T) {
	reconnected := make(chan struct{}, 1)

	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		authorize(t, conn, "tok-1")
		if attempt >= 2 {
			select {
			case reconnected <- struct{}{}:
			default:
			}
		}
		for {
			_, _, _, err := readRequest(conn)
			if err != nil {
				return
			}
			// never respond: every call stalls, simulating a connection that
			// stays open but stops answering
		}
	})

	cfg := baseCfg(url)
	cfg.RequestTimeout = 30 * time.Millisecond
	cfg.Health.Interval = 20 * time.Millisecond
	cfg.Health.MaxConsecutiveFailures = 2
	rc := New(cfg, nil)
	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	select {
	case <-reconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the health monitor to force a reconnect after repeated timeouts")
	}
}

func TestHealthMonitorDisabledNeverReconnects(t *testing.T) {
	var totalConns atomic.Int32
	url := newFakeServer(t, func(attempt int32, conn *websocket.Conn) {
		totalConns.Store(attempt)
		authorize(t, conn, "tok-1")
		for {
			_, _, _, err := readRequest(conn)
			if err != nil {
				return
			}
		}
	})

	cfg := baseCfg(url)
	cfg.RequestTimeout = 20 * time.Millisecond
	cfg.Health.Enabled = false
	cfg.Health.Interval = 10 * time.Millisecond
	cfg.Health.MaxConsecutiveFailures = 1
	rc := New(cfg, nil)
	require.NoError(t, rc.Connect(context.Background()))
	defer rc.Close()

	time.Sleep(200 * time.Millisecond)
	require.Equal(t, int32(1), totalConns.Load(), "disabled health monitor must never poll or reconnect")
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
