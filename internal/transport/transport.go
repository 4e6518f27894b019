// Package transport owns the duplex WebSocket connection to Cortex: one
// writer, one reader, a pending-request registry, and routing of
// unsolicited stream events into the demultiplexer.
package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/emotiv/cortexgo/internal/logging"
	"github.com/emotiv/cortexgo/internal/stream"
	"github.com/emotiv/cortexgo/pkg/cortexerr"
	"github.com/emotiv/cortexgo/pkg/protocol"
)

// Config configures a Transport's dial behavior.
type Config struct {
	URL              string
	AllowInsecureTLS bool
	HandshakeTimeout time.Duration
	Logger           logging.Logger
}

type pendingResult struct {
	raw json.RawMessage
	err error
}

type pendingRequest struct {
	method string
	result chan pendingResult
	once   sync.Once
}

func (p *pendingRequest) resolve(raw json.RawMessage, err error) {
	p.once.Do(func() {
		p.result <- pendingResult{raw: raw, err: err}
	})
}

type writeJob struct {
	data  []byte
	errCh chan error
}

// Transport is a single duplex connection to a Cortex endpoint. Exactly
// one writer goroutine and one reader goroutine own the socket; all other
// interaction happens through Call, Subscribe/Unsubscribe, and Close.
type Transport struct {
	cfg  Config
	conn *websocket.Conn
	log  logging.Logger

	demux *stream.Demux

	writeCh chan writeJob

	muPending sync.Mutex
	pending   map[uint64]*pendingRequest
	nextID    atomic.Uint64

	done       chan struct{}
	closeOnce  sync.Once
	readerDone chan struct{}
}

// Connect dials the Cortex endpoint and starts the writer and reader
// goroutines. The returned Transport is ready for Call/Subscribe.
func Connect(ctx context.Context, cfg Config) (*Transport, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Noop()
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, cortexerr.Wrap(cortexerr.KindConfig, err, "parse cortex url %q", cfg.URL)
	}

	handshakeTimeout := cfg.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	if u.Scheme == "wss" {
		host := u.Hostname()
		insecure := cfg.AllowInsecureTLS && (host == "localhost" || host == "127.0.0.1")
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecure}
	}

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, nil)
	if err != nil {
		return nil, cortexerr.Wrap(cortexerr.KindTransport, err, "dial %s", cfg.URL)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	connID := uuid.New().String()
	t := &Transport{
		cfg:        cfg,
		conn:       conn,
		log:        cfg.Logger.With(logging.String("conn_id", connID)),
		demux:      stream.NewDemux(),
		writeCh:    make(chan writeJob, 64),
		pending:    make(map[uint64]*pendingRequest),
		done:       make(chan struct{}),
		readerDone: make(chan struct{}),
	}

	go t.writeLoop()
	go t.readLoop()

	return t, nil
}

func (t *Transport) writeLoop() {
	for {
		select {
		case <-t.done:
			return
		case job := <-t.writeCh:
			err := t.conn.WriteMessage(websocket.TextMessage, job.data)
			job.errCh <- err
		}
	}
}

func (t *Transport) send(data []byte) error {
	errCh := make(chan error, 1)
	select {
	case t.writeCh <- writeJob{data: data, errCh: errCh}:
	case <-t.done:
		return cortexerr.New(cortexerr.KindConnectionClosed, "transport closed")
	}
	select {
	case err := <-errCh:
		if err != nil {
			return cortexerr.Wrap(cortexerr.KindTransport, err, "write frame")
		}
		return nil
	case <-t.done:
		return cortexerr.New(cortexerr.KindConnectionClosed, "transport closed")
	}
}

// Call sends method(params) and waits for the matching response, up to
// timeout (0 means wait until ctx is done). The pending-registry entry for
// this call's id is always removed before Call returns, regardless of
// outcome.
func (t *Transport) Call(ctx context.Context, method string, params any, timeout time.Duration) (json.RawMessage, error) {
	id := t.nextID.Add(1)
	req, err := protocol.NewRequest(id, method, params)
	if err != nil {
		return nil, cortexerr.Wrap(cortexerr.KindProtocol, err, "build request").WithMethod(method)
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, cortexerr.Wrap(cortexerr.KindProtocol, err, "marshal request").WithMethod(method)
	}

	pr := &pendingRequest{method: method, result: make(chan pendingResult, 1)}
	t.muPending.Lock()
	t.pending[id] = pr
	t.muPending.Unlock()

	cleanup := func() {
		t.muPending.Lock()
		delete(t.pending, id)
		t.muPending.Unlock()
	}

	if err := t.send(data); err != nil {
		cleanup()
		return nil, err
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case res := <-pr.result:
		cleanup()
		if res.err != nil {
			return nil, res.err
		}
		return res.raw, nil
	case <-callCtx.Done():
		cleanup()
		return nil, cortexerr.New(cortexerr.KindTimeout, "%s: %v", method, callCtx.Err()).WithMethod(method)
	case <-t.done:
		cleanup()
		return nil, cortexerr.New(cortexerr.KindConnectionClosed, "transport closed").WithMethod(method)
	}
}

// Subscribe registers a bounded local delivery queue for (streamName,
// session) so inbound stream events for that pair are routed here instead
// of discarded.
func (t *Transport) Subscribe(streamName, session string, capacity int) *stream.Subscription {
	return t.demux.Subscribe(streamName, session, capacity)
}

// Unsubscribe removes and closes the local delivery queue for
// (streamName, session).
func (t *Transport) Unsubscribe(streamName, session string) {
	t.demux.Unsubscribe(streamName, session)
}

func (t *Transport) readLoop() {
	defer close(t.readerDone)
	for {
		select {
		case <-t.done:
			return
		default:
		}

		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.log.Warn("reader loop terminated", logging.Err(err))
			// A read error ends the connection: shut the transport down so
			// pending and later calls fail with ConnectionClosed.
			go t.Close()
			return
		}
		t.handleFrame(data)
	}
}

func (t *Transport) handleFrame(data []byte) {
	switch {
	case protocol.IsResponse(data):
		var resp protocol.Response
		if err := json.Unmarshal(data, &resp); err != nil {
			t.log.Warn("protocol drift: malformed response", logging.Err(err))
			return
		}
		if resp.ID == nil {
			return
		}
		t.muPending.Lock()
		pr, ok := t.pending[*resp.ID]
		delete(t.pending, *resp.ID)
		t.muPending.Unlock()
		if !ok {
			t.log.Warn("response for unknown or already-resolved request id")
			return
		}
		if resp.Error != nil {
			pr.resolve(nil, cortexerr.FromAPI(pr.method, resp.Error.Code, resp.Error.Message, resp.Error.Data))
			return
		}
		pr.resolve(resp.Result, nil)

	case protocol.IsStreamEvent(data):
		var raw protocol.RawEvent
		if err := json.Unmarshal(data, &raw); err != nil {
			t.log.Warn("protocol drift: malformed stream event", logging.Err(err))
			return
		}
		kind := raw.Kind()
		if kind == "" {
			kind = protocol.StreamSys
		}
		t.demux.Route(kind, raw.Sid, &raw)

	default:
		t.log.Warn("protocol drift: unrecognized frame")
	}
}

// Close signals shutdown, waits for the reader to terminate, closes the
// socket, and guarantees every pending call has resolved with a
// ConnectionClosed error before it returns.
func (t *Transport) Close() error {
	var closeErr error
	t.closeOnce.Do(func() {
		close(t.done)
		closeErr = t.conn.Close()
		<-t.readerDone
		t.failAllPending()
		t.demux.CloseAll()
	})
	return closeErr
}

func (t *Transport) failAllPending() {
	t.muPending.Lock()
	pending := t.pending
	t.pending = make(map[uint64]*pendingRequest)
	t.muPending.Unlock()

	err := cortexerr.New(cortexerr.KindConnectionClosed, "transport closed")
	for _, pr := range pending {
		pr.resolve(nil, err)
	}
}

// PendingCount reports the number of in-flight calls, used by tests to
// assert the registry invariant.
func (t *Transport) PendingCount() int {
	t.muPending.Lock()
	defer t.muPending.Unlock()
	return len(t.pending)
}
