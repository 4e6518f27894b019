package client

import (
	"context"

	"github.com/emotiv/cortexgo/pkg/protocol"
)

// CreateSession opens a session binding a headset to this client's token.
func (c *CortexClient) CreateSession(ctx context.Context, p protocol.CreateSessionParams) (protocol.Session, error) {
	return call[protocol.Session](ctx, c, protocol.MethodCreateSession, p)
}

// UpdateSession activates or closes an open session, according to p.Status.
func (c *CortexClient) UpdateSession(ctx context.Context, p protocol.UpdateSessionParams) (protocol.Session, error) {
	return call[protocol.Session](ctx, c, protocol.MethodUpdateSession, p)
}

// QuerySessions lists sessions owned by the current token.
func (c *CortexClient) QuerySessions(ctx context.Context, p protocol.QuerySessionsParams) ([]protocol.Session, error) {
	return call[[]protocol.Session](ctx, c, protocol.MethodQuerySessions, p)
}
