package client

import (
	"context"

	"github.com/emotiv/cortexgo/pkg/protocol"
)

// QueryProfile lists all profiles owned by the current user.
func (c *CortexClient) QueryProfile(ctx context.Context, p protocol.QueryProfileParams) ([]protocol.ProfileInfo, error) {
	return call[[]protocol.ProfileInfo](ctx, c, protocol.MethodQueryProfile, p)
}

// GetCurrentProfile reports which profile, if any, is loaded on a headset.
func (c *CortexClient) GetCurrentProfile(ctx context.Context, p protocol.GetCurrentProfileParams) (protocol.ProfileInfo, error) {
	return call[protocol.ProfileInfo](ctx, c, protocol.MethodGetCurrentProfile, p)
}

// SetupProfile creates, loads, saves, renames, or deletes a training
// profile, according to p.Status.
func (c *CortexClient) SetupProfile(ctx context.Context, p protocol.SetupProfileParams) (string, error) {
	return call[string](ctx, c, protocol.MethodSetupProfile, p)
}

// LoadGuestProfile loads the anonymous default profile on a headset.
func (c *CortexClient) LoadGuestProfile(ctx context.Context, p protocol.LoadGuestProfileParams) (string, error) {
	return call[string](ctx, c, protocol.MethodLoadGuestProfile, p)
}
