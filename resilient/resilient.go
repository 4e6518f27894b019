// Package resilient wraps client.CortexClient with reconnection, token
// refresh, retry classification, and replay of active subscriptions, so a
// long-lived consumer does not have to hand-roll those concerns.
package resilient

import (
	"context"
	"sync"
	"time"

	"github.com/emotiv/cortexgo/client"
	"github.com/emotiv/cortexgo/config"
	"github.com/emotiv/cortexgo/internal/logging"
	"github.com/emotiv/cortexgo/pkg/cortexerr"
	"github.com/emotiv/cortexgo/pkg/protocol"
)

// TokenRefreshInterval is the proactive token refresh period, chosen to
// land comfortably inside Cortex's token lifetime.
const TokenRefreshInterval = 55 * time.Minute

type bridgeKey struct {
	stream, session string
}

// ResilientClient is the long-lived, self-healing Cortex client: callers
// get typed RPC methods and subscriptions that survive reconnects.
type ResilientClient struct {
	cfg config.Config
	log logging.Logger

	reconnectMu sync.Mutex // serializes reconnect attempts
	bo          *backoff

	mu      sync.Mutex
	raw     *client.CortexClient
	token   string
	state   ConnectionState
	bridges map[bridgeKey]*Subscription
	closed  bool
	epoch   uint64 // bumped on every connection replacement; lets a stale reconnect caller detect it lost the race

	bus *eventBus

	refreshStop chan struct{}
	refreshDone chan struct{}

	healthStop chan struct{}
	healthDone chan struct{}
}

// New builds a ResilientClient from validated configuration. Call Connect
// before issuing RPCs.
func New(cfg config.Config, log logging.Logger) *ResilientClient {
	if log == nil {
		log = logging.Noop()
	}
	return &ResilientClient{
		cfg:     cfg,
		log:     log,
		bo:      newBackoff(cfg.Reconnect),
		bridges: make(map[bridgeKey]*Subscription),
		bus:     newEventBus(),
		state:   StateDisconnected,
	}
}

// Events returns a channel of ConnectionEvent and a function to stop
// receiving them.
func (rc *ResilientClient) Events(capacity int) (<-chan ConnectionEvent, func()) {
	return rc.bus.subscribe(capacity)
}

// State reports the current lifecycle state.
func (rc *ResilientClient) State() ConnectionState {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.state
}

// Connect dials Cortex, authorizes with the configured credentials, and
// starts the proactive token refresh timer.
func (rc *ResilientClient) Connect(ctx context.Context) error {
	rc.setState(StateConnecting)

	raw, token, err := rc.dialAndAuthorize(ctx)
	if err != nil {
		rc.publish(ConnectionEvent{State: StateDisconnected, Err: err})
		return err
	}

	rc.mu.Lock()
	rc.raw = raw
	rc.token = token
	rc.closed = false
	rc.mu.Unlock()

	rc.setState(StateAuthenticated)
	rc.publish(ConnectionEvent{State: StateAuthenticated})

	rc.refreshStop = make(chan struct{})
	rc.refreshDone = make(chan struct{})
	go rc.refreshLoop()

	rc.healthStop = make(chan struct{})
	rc.healthDone = make(chan struct{})
	go rc.healthLoop()

	return nil
}

func (rc *ResilientClient) dialAndAuthorize(ctx context.Context) (*client.CortexClient, string, error) {
	raw, err := client.Connect(ctx, client.Config{
		URL:              rc.cfg.CortexURL,
		RequestTimeout:   rc.cfg.RequestTimeout,
		AllowInsecureTLS: rc.cfg.AllowInsecureTLS,
		Logger:           rc.log,
	})
	if err != nil {
		return nil, "", err
	}

	var license *string
	if rc.cfg.License != "" {
		license = &rc.cfg.License
	}
	result, err := raw.Authorize(ctx, protocol.AuthorizeParams{
		ClientID:     rc.cfg.ClientID,
		ClientSecret: rc.cfg.ClientSecret,
		License:      license,
	})
	if err != nil {
		_ = raw.Disconnect()
		return nil, "", err
	}
	return raw, result.CortexToken, nil
}

func (rc *ResilientClient) refreshLoop() {
	defer close(rc.refreshDone)
	ticker := time.NewTicker(TokenRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := rc.refreshToken(context.Background()); err != nil {
				rc.log.Warn("proactive token refresh failed", logging.Err(err))
			}
		case <-rc.refreshStop:
			return
		}
	}
}

func (rc *ResilientClient) refreshToken(ctx context.Context) error {
	rc.mu.Lock()
	raw := rc.raw
	token := rc.token
	rc.mu.Unlock()
	if raw == nil {
		return cortexerr.New(cortexerr.KindConnectionClosed, "not connected")
	}

	result, err := raw.GenerateNewToken(ctx, protocol.GenerateNewTokenParams{
		CortexToken:  token,
		ClientID:     rc.cfg.ClientID,
		ClientSecret: rc.cfg.ClientSecret,
	})
	if err != nil {
		return err
	}

	rc.mu.Lock()
	rc.token = result.CortexToken
	rc.mu.Unlock()
	return nil
}

// healthLoop periodically pings Cortex via GetCortexInfo to catch a
// connection gone stale in a way that never surfaces as a hard transport
// error on its own (e.g. the socket stays open but Cortex stops
// answering). After cfg.Health.MaxConsecutiveFailures failures in a row
// it forces a reconnect instead of waiting for some other RPC to fail
// first.
func (rc *ResilientClient) healthLoop() {
	defer close(rc.healthDone)
	if !rc.cfg.Health.Enabled {
		return
	}

	ticker := time.NewTicker(rc.cfg.Health.Interval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ticker.C:
			rc.mu.Lock()
			closed := rc.closed
			epoch := rc.epoch
			rc.mu.Unlock()
			if closed {
				return
			}

			ctx := context.Background()
			_, err := Do(ctx, rc, func(c *client.CortexClient) (protocol.CortexInfo, error) {
				return c.GetCortexInfo(ctx)
			})

			if err == nil {
				failures = 0
				continue
			}

			failures++
			rc.log.Warn("health check failed", logging.Int("consecutive_failures", failures), logging.Err(err))
			if failures >= rc.cfg.Health.MaxConsecutiveFailures {
				rc.log.Warn("health monitor detected an unhealthy connection, forcing reconnect")
				if rerr := rc.reconnect(context.Background(), epoch); rerr != nil {
					rc.log.Warn("health-triggered reconnect failed", logging.Err(rerr))
				}
				failures = 0
			}
		case <-rc.healthStop:
			return
		}
	}
}

func (rc *ResilientClient) setState(s ConnectionState) {
	rc.mu.Lock()
	rc.state = s
	rc.mu.Unlock()
}

func (rc *ResilientClient) publish(evt ConnectionEvent) {
	rc.bus.publish(evt)
}

// reconnect tears down the dead connection, dials and authorizes again
// with exponential backoff, and replays every active subscription before
// returning. Concurrent callers serialize on reconnectMu; only one dial
// loop runs at a time. observedEpoch is the epoch the caller saw before
// its RPC failed: if another caller already repaired the connection by
// the time this one acquires the lock, rc.epoch will have moved past it,
// and this call returns immediately instead of disconnecting the fresh
// connection and redialing from scratch.
func (rc *ResilientClient) reconnect(ctx context.Context, observedEpoch uint64) error {
	rc.reconnectMu.Lock()
	defer rc.reconnectMu.Unlock()

	rc.mu.Lock()
	if rc.closed {
		rc.mu.Unlock()
		return cortexerr.New(cortexerr.KindConnectionClosed, "client closed")
	}
	if rc.epoch != observedEpoch {
		rc.mu.Unlock()
		return nil
	}
	old := rc.raw
	rc.mu.Unlock()
	if old != nil {
		_ = old.Disconnect()
	}

	rc.setState(StateReconnecting)
	rc.bo.reset()

	attempt := 0
	for {
		attempt++
		rc.publish(ConnectionEvent{State: StateReconnecting, Attempt: attempt})

		raw, token, err := rc.dialAndAuthorize(ctx)
		if err == nil {
			rc.mu.Lock()
			rc.raw = raw
			rc.token = token
			rc.epoch++
			rc.mu.Unlock()

			if rerr := rc.replaySubscriptions(ctx); rerr != nil {
				rc.log.Warn("subscription replay failed", logging.Err(rerr))
				rc.publish(ConnectionEvent{State: StateReconnecting, Err: rerr, Attempt: attempt})
				_ = raw.Disconnect()
				select {
				case <-time.After(rc.bo.next()):
					continue
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			rc.mu.Lock()
			hasSubs := len(rc.bridges) > 0
			rc.mu.Unlock()
			if hasSubs {
				rc.setState(StateSubscribed)
				rc.publish(ConnectionEvent{State: StateSubscribed, Attempt: attempt})
			} else {
				rc.setState(StateAuthenticated)
				rc.publish(ConnectionEvent{State: StateAuthenticated, Attempt: attempt})
			}
			return nil
		}

		if cortexerr.KindOf(err) == cortexerr.KindConfig {
			rc.publish(ConnectionEvent{State: StateDisconnected, Err: err, Attempt: attempt})
			return err
		}

		rc.publish(ConnectionEvent{State: StateReconnecting, Err: err, Attempt: attempt})

		if rc.cfg.Reconnect.MaxAttempts > 0 && attempt >= rc.cfg.Reconnect.MaxAttempts {
			return err
		}

		select {
		case <-time.After(rc.bo.next()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// replaySubscriptions reissues subscribe for every authoritative
// (stream, session) pair and re-attaches the new underlying queue to the
// existing consumer-visible Subscription.
func (rc *ResilientClient) replaySubscriptions(ctx context.Context) error {
	rc.mu.Lock()
	raw := rc.raw
	token := rc.token
	bridges := make(map[bridgeKey]*Subscription, len(rc.bridges))
	for k, b := range rc.bridges {
		bridges[k] = b
	}
	rc.mu.Unlock()

	for key, bridge := range bridges {
		subs, failures, err := raw.Subscribe(ctx, protocol.SubscribeParams{
			CortexToken: token,
			Session:     key.session,
			Streams:     []string{key.stream},
		}, bridge.capacity)
		if err != nil {
			return err
		}
		if len(failures) > 0 {
			return cortexerr.New(cortexerr.KindServer, "resubscribe %s/%s: %s", key.stream, key.session, failures[0].Message)
		}
		bridge.attach(subs[0])
	}
	return nil
}

// Do executes fn against the current raw client, classifying any error
// per the resilient client's retry policy: TokenInvalid triggers a token
// refresh and one retry, ConnectionClosed/Transport trigger a reconnect
// and one retry, Timeout is retried once in place with no reconnect
// (the connection itself may still be healthy), everything else
// surfaces immediately.
func Do[T any](ctx context.Context, rc *ResilientClient, fn func(*client.CortexClient) (T, error)) (T, error) {
	var zero T

	rc.mu.Lock()
	raw := rc.raw
	closed := rc.closed
	epoch := rc.epoch
	rc.mu.Unlock()
	if closed || raw == nil {
		return zero, cortexerr.New(cortexerr.KindConnectionClosed, "not connected")
	}

	result, err := fn(raw)
	if err == nil {
		return result, nil
	}

	switch cortexerr.KindOf(err) {
	case cortexerr.KindTokenInvalid:
		if rerr := rc.refreshToken(ctx); rerr != nil {
			return zero, rerr
		}
	case cortexerr.KindConnectionClosed, cortexerr.KindTransport:
		if rerr := rc.reconnect(ctx, epoch); rerr != nil {
			return zero, rerr
		}
	case cortexerr.KindTimeout:
		// retry as-is; a slow response doesn't mean the connection is dead
	default:
		return zero, err
	}

	rc.mu.Lock()
	raw = rc.raw
	rc.mu.Unlock()
	return fn(raw)
}

// CallRaw is the escape hatch for RPC methods not wrapped by a typed
// resilient convenience method; it still benefits from retry/reconnect
// classification.
func (rc *ResilientClient) CallRaw(ctx context.Context, method string, params any) (any, error) {
	return Do(ctx, rc, func(c *client.CortexClient) (any, error) {
		return c.CallRaw(ctx, method, params)
	})
}

// GetCortexInfo returns Cortex service version information.
func (rc *ResilientClient) GetCortexInfo(ctx context.Context) (protocol.CortexInfo, error) {
	return Do(ctx, rc, func(c *client.CortexClient) (protocol.CortexInfo, error) {
		return c.GetCortexInfo(ctx)
	})
}

// QueryHeadsets lists headsets known to Cortex.
func (rc *ResilientClient) QueryHeadsets(ctx context.Context, p protocol.QueryHeadsetsParams) ([]protocol.HeadsetInfo, error) {
	return Do(ctx, rc, func(c *client.CortexClient) ([]protocol.HeadsetInfo, error) {
		return c.QueryHeadsets(ctx, p)
	})
}

// CreateSession opens a session binding a headset to the resilient
// client's current token; p.CortexToken is overwritten with the current
// token so it always matches the live connection.
func (rc *ResilientClient) CreateSession(ctx context.Context, p protocol.CreateSessionParams) (protocol.Session, error) {
	return Do(ctx, rc, func(c *client.CortexClient) (protocol.Session, error) {
		p.CortexToken = rc.currentToken()
		return c.CreateSession(ctx, p)
	})
}

// UpdateSession activates or closes an open session, according to
// p.Status.
func (rc *ResilientClient) UpdateSession(ctx context.Context, p protocol.UpdateSessionParams) (protocol.Session, error) {
	return Do(ctx, rc, func(c *client.CortexClient) (protocol.Session, error) {
		p.CortexToken = rc.currentToken()
		return c.UpdateSession(ctx, p)
	})
}

// CreateRecord starts a new record within an active session.
func (rc *ResilientClient) CreateRecord(ctx context.Context, p protocol.CreateRecordParams) (protocol.RecordInfo, error) {
	return Do(ctx, rc, func(c *client.CortexClient) (protocol.RecordInfo, error) {
		p.CortexToken = rc.currentToken()
		return c.CreateRecord(ctx, p)
	})
}

// StopRecord stops the record currently open on a session.
func (rc *ResilientClient) StopRecord(ctx context.Context, p protocol.StopRecordParams) (protocol.RecordInfo, error) {
	return Do(ctx, rc, func(c *client.CortexClient) (protocol.RecordInfo, error) {
		p.CortexToken = rc.currentToken()
		return c.StopRecord(ctx, p)
	})
}

// Train drives the BCI training state machine for one action.
func (rc *ResilientClient) Train(ctx context.Context, p protocol.TrainingParams) (protocol.TrainingResult, error) {
	return Do(ctx, rc, func(c *client.CortexClient) (protocol.TrainingResult, error) {
		p.CortexToken = rc.currentToken()
		return c.Train(ctx, p)
	})
}

func (rc *ResilientClient) currentToken() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.token
}

// Subscribe requests delivery of the given streams for a session. The
// returned Subscriptions are stable across reconnects: the resilient
// client transparently re-subscribes and re-attaches a fresh underlying
// queue to the same Subscription value after a reconnect.
func (rc *ResilientClient) Subscribe(ctx context.Context, session string, streamNames []string, queueCapacity int) (map[string]*Subscription, []protocol.StreamFailure, error) {
	rc.mu.Lock()
	raw := rc.raw
	token := rc.token
	rc.mu.Unlock()
	if raw == nil {
		return nil, nil, cortexerr.New(cortexerr.KindConnectionClosed, "not connected")
	}

	subs, failures, err := raw.Subscribe(ctx, protocol.SubscribeParams{
		CortexToken: token,
		Session:     session,
		Streams:     streamNames,
	}, queueCapacity)
	if err != nil {
		return nil, nil, err
	}

	result := make(map[string]*Subscription, len(subs))
	rc.mu.Lock()
	for _, sub := range subs {
		b := newSubscription(sub.StreamName(), session, queueCapacity)
		b.attach(sub)
		rc.bridges[bridgeKey{sub.StreamName(), session}] = b
		result[sub.StreamName()] = b
	}
	rc.mu.Unlock()

	if len(result) > 0 {
		rc.setState(StateSubscribed)
		rc.publish(ConnectionEvent{State: StateSubscribed})
	}
	return result, failures, nil
}

// Unsubscribe stops delivery of the named streams for a session, both on
// the Cortex side and locally; the corresponding Subscription values are
// closed.
func (rc *ResilientClient) Unsubscribe(ctx context.Context, session string, streamNames []string) (protocol.SubscribeResult, error) {
	rc.mu.Lock()
	raw := rc.raw
	token := rc.token
	rc.mu.Unlock()
	if raw == nil {
		return protocol.SubscribeResult{}, cortexerr.New(cortexerr.KindConnectionClosed, "not connected")
	}

	result, err := raw.Unsubscribe(ctx, protocol.SubscribeParams{
		CortexToken: token,
		Session:     session,
		Streams:     streamNames,
	})
	if err != nil {
		return result, err
	}

	rc.mu.Lock()
	for _, name := range streamNames {
		key := bridgeKey{name, session}
		if b, ok := rc.bridges[key]; ok {
			delete(rc.bridges, key)
			b.close()
		}
	}
	noneLeft := len(rc.bridges) == 0
	rc.mu.Unlock()

	if noneLeft {
		rc.setState(StateAuthenticated)
		rc.publish(ConnectionEvent{State: StateAuthenticated})
	}
	return result, nil
}

// Close shuts down the underlying connection, stops the token refresh
// timer and health monitor, closes every active subscription, and
// releases event bus subscribers. Close is idempotent.
func (rc *ResilientClient) Close() error {
	rc.mu.Lock()
	if rc.closed {
		rc.mu.Unlock()
		return nil
	}
	rc.closed = true
	raw := rc.raw
	bridges := rc.bridges
	rc.bridges = make(map[bridgeKey]*Subscription)
	rc.state = StateClosed
	rc.mu.Unlock()

	if rc.refreshStop != nil {
		close(rc.refreshStop)
		<-rc.refreshDone
	}
	if rc.healthStop != nil {
		close(rc.healthStop)
		<-rc.healthDone
	}

	for _, b := range bridges {
		b.close()
	}

	var err error
	if raw != nil {
		err = raw.Disconnect()
	}

	rc.publish(ConnectionEvent{State: StateClosed})
	rc.bus.closeAll()
	return err
}
