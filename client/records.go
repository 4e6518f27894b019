package client

import (
	"context"
	"encoding/json"

	"github.com/emotiv/cortexgo/pkg/protocol"
)

// CreateRecord starts a new record within an active session.
func (c *CortexClient) CreateRecord(ctx context.Context, p protocol.CreateRecordParams) (protocol.RecordInfo, error) {
	return call[protocol.RecordInfo](ctx, c, protocol.MethodCreateRecord, p)
}

// StopRecord stops the record currently open on a session.
func (c *CortexClient) StopRecord(ctx context.Context, p protocol.StopRecordParams) (protocol.RecordInfo, error) {
	return call[protocol.RecordInfo](ctx, c, protocol.MethodStopRecord, p)
}

// UpdateRecord patches a record's title, description, or tags.
func (c *CortexClient) UpdateRecord(ctx context.Context, p protocol.UpdateRecordParams) (protocol.RecordInfo, error) {
	return call[protocol.RecordInfo](ctx, c, protocol.MethodUpdateRecord, p)
}

// DeleteRecord permanently deletes the given records.
func (c *CortexClient) DeleteRecord(ctx context.Context, p protocol.DeleteRecordParams) error {
	_, err := call[json.RawMessage](ctx, c, protocol.MethodDeleteRecord, p)
	return err
}

// ExportRecord exports one or more records to disk in a given format.
func (c *CortexClient) ExportRecord(ctx context.Context, p protocol.ExportRecordParams) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, protocol.MethodExportRecord, p)
}

// QueryRecords searches records with an optional filter, ordering, and
// pagination.
func (c *CortexClient) QueryRecords(ctx context.Context, p protocol.QueryRecordsParams) ([]protocol.RecordInfo, error) {
	return call[[]protocol.RecordInfo](ctx, c, protocol.MethodQueryRecords, p)
}

// GetRecordInfos fetches full metadata for specific record ids.
func (c *CortexClient) GetRecordInfos(ctx context.Context, p protocol.GetRecordInfosParams) ([]protocol.RecordInfo, error) {
	return call[[]protocol.RecordInfo](ctx, c, protocol.MethodGetRecordInfos, p)
}

// ConfigOptOut toggles data-sharing opt-out for the current user.
func (c *CortexClient) ConfigOptOut(ctx context.Context, p protocol.ConfigOptOutParams) error {
	_, err := call[json.RawMessage](ctx, c, protocol.MethodConfigOptOut, p)
	return err
}

// RequestDownloadRecordData asks Cortex to prepare a download bundle for
// the given records.
func (c *CortexClient) RequestDownloadRecordData(ctx context.Context, p protocol.RequestDownloadRecordDataParams) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, protocol.MethodRequestDownloadRecordData, p)
}

// InjectMarker injects a labeled marker at a point in time within an
// active session/record.
func (c *CortexClient) InjectMarker(ctx context.Context, p protocol.InjectMarkerParams) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, protocol.MethodInjectMarker, p)
}

// UpdateMarker patches a previously injected marker.
func (c *CortexClient) UpdateMarker(ctx context.Context, p protocol.UpdateMarkerParams) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, protocol.MethodUpdateMarker, p)
}
