package client

import (
	"context"
	"encoding/json"

	"github.com/emotiv/cortexgo/pkg/protocol"
)

// QueryHeadsets lists headsets known to Cortex, optionally filtered by id.
func (c *CortexClient) QueryHeadsets(ctx context.Context, p protocol.QueryHeadsetsParams) ([]protocol.HeadsetInfo, error) {
	return call[[]protocol.HeadsetInfo](ctx, c, protocol.MethodQueryHeadsets, p)
}

// ControlDevice issues a device-level command (connect/disconnect/refresh)
// against a headset or dongle.
func (c *CortexClient) ControlDevice(ctx context.Context, p protocol.ControlDeviceParams) (protocol.TrainingResult, error) {
	return call[protocol.TrainingResult](ctx, c, protocol.MethodControlDevice, p)
}

// UpdateHeadset changes a headset's sampling settings.
func (c *CortexClient) UpdateHeadset(ctx context.Context, p protocol.UpdateHeadsetParams) (protocol.HeadsetInfo, error) {
	return call[protocol.HeadsetInfo](ctx, c, protocol.MethodUpdateHeadset, p)
}

// UpdateHeadsetCustomInfo records the physical headband position for a
// headset.
func (c *CortexClient) UpdateHeadsetCustomInfo(ctx context.Context, p protocol.UpdateHeadsetCustomInfoParams) error {
	_, err := call[json.RawMessage](ctx, c, protocol.MethodUpdateHeadsetCustomInfo, p)
	return err
}

// SyncWithHeadsetClock synchronizes the headset's monotonic clock with
// host wall-clock time.
func (c *CortexClient) SyncWithHeadsetClock(ctx context.Context, p protocol.HeadsetClockSyncParams) error {
	_, err := call[json.RawMessage](ctx, c, protocol.MethodSyncWithHeadsetClock, p)
	return err
}

// ConfigMapping configures or queries the channel mapping for a custom
// headset mode.
func (c *CortexClient) ConfigMapping(ctx context.Context, p protocol.ConfigMappingParams) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, protocol.MethodConfigMapping, p)
}
