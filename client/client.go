// Package client provides CortexClient, a thin typed facade over the
// transport and framing layers: one method per Cortex RPC. The caller
// manages the cortex token; CortexClient does not cache or refresh it.
package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emotiv/cortexgo/internal/logging"
	"github.com/emotiv/cortexgo/internal/transport"
	"github.com/emotiv/cortexgo/pkg/cortexerr"
	"github.com/emotiv/cortexgo/pkg/protocol"
)

// Config configures a single CortexClient connection.
type Config struct {
	URL              string
	RequestTimeout   time.Duration
	AllowInsecureTLS bool
	Logger           logging.Logger
}

// CortexClient is a single-use, connection-scoped raw client: after
// Disconnect, every method returns ConnectionClosed.
type CortexClient struct {
	tr      *transport.Transport
	timeout time.Duration
	log     logging.Logger
}

// Connect opens the socket, completes the WebSocket handshake, and
// returns a CortexClient ready for calls.
func Connect(ctx context.Context, cfg Config) (*CortexClient, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	tr, err := transport.Connect(ctx, transport.Config{
		URL:              cfg.URL,
		AllowInsecureTLS: cfg.AllowInsecureTLS,
		Logger:           log,
	})
	if err != nil {
		return nil, err
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CortexClient{tr: tr, timeout: timeout, log: log}, nil
}

// Disconnect drives the transport shutdown contract: every outstanding
// call resolves with ConnectionClosed before this returns.
func (c *CortexClient) Disconnect() error {
	return c.tr.Close()
}

// CallRaw is the escape hatch for methods not covered by the typed
// surface: it sends method(params) and returns the raw JSON result.
func (c *CortexClient) CallRaw(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return c.tr.Call(ctx, method, params, c.timeout)
}

func call[T any](ctx context.Context, c *CortexClient, method string, params any) (T, error) {
	var zero T
	raw, err := c.tr.Call(ctx, method, params, c.timeout)
	if err != nil {
		return zero, err
	}
	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return zero, cortexerr.Wrap(cortexerr.KindProtocol, err, "decode %s result", method).WithMethod(method)
	}
	return result, nil
}

// GetCortexInfo returns Cortex service version information.
func (c *CortexClient) GetCortexInfo(ctx context.Context) (protocol.CortexInfo, error) {
	return call[protocol.CortexInfo](ctx, c, protocol.MethodGetCortexInfo, nil)
}

// GetUserLogin lists Emotiv Launcher users currently logged in locally.
func (c *CortexClient) GetUserLogin(ctx context.Context) ([]protocol.UserLoginInfo, error) {
	return call[[]protocol.UserLoginInfo](ctx, c, protocol.MethodGetUserLogin, nil)
}

// RequestAccess asks the user (via Cortex/EmotivApp) to grant this client
// application access.
func (c *CortexClient) RequestAccess(ctx context.Context, p protocol.AccessParams) (protocol.AccessResult, error) {
	return call[protocol.AccessResult](ctx, c, protocol.MethodRequestAccess, p)
}

// HasAccessRight checks whether this client application already has an
// approved access grant.
func (c *CortexClient) HasAccessRight(ctx context.Context, p protocol.AccessParams) (protocol.AccessResult, error) {
	return call[protocol.AccessResult](ctx, c, protocol.MethodHasAccessRight, p)
}

// Authorize exchanges client credentials (and an optional license key) for
// a cortex token.
func (c *CortexClient) Authorize(ctx context.Context, p protocol.AuthorizeParams) (protocol.AuthorizeResult, error) {
	if p.ClientID == "" || p.ClientSecret == "" {
		return protocol.AuthorizeResult{}, cortexerr.New(cortexerr.KindInvalidArgument, "clientId and clientSecret are required").WithMethod(protocol.MethodAuthorize)
	}
	return call[protocol.AuthorizeResult](ctx, c, protocol.MethodAuthorize, p)
}

// GenerateNewToken refreshes an existing cortex token.
func (c *CortexClient) GenerateNewToken(ctx context.Context, p protocol.GenerateNewTokenParams) (protocol.GenerateNewTokenResult, error) {
	return call[protocol.GenerateNewTokenResult](ctx, c, protocol.MethodGenerateNewToken, p)
}

// GetUserInformation returns account details for the current token.
func (c *CortexClient) GetUserInformation(ctx context.Context, p protocol.UserInfoParams) (protocol.UserInfo, error) {
	return call[protocol.UserInfo](ctx, c, protocol.MethodGetUserInfo, p)
}

// GetLicenseInfo returns license details for the current token.
func (c *CortexClient) GetLicenseInfo(ctx context.Context, p protocol.LicenseInfoParams) (protocol.LicenseInfo, error) {
	return call[protocol.LicenseInfo](ctx, c, protocol.MethodGetLicenseInfo, p)
}
