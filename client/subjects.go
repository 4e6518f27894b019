package client

import (
	"context"
	"encoding/json"

	"github.com/emotiv/cortexgo/pkg/protocol"
)

// CreateSubject registers a new study subject.
func (c *CortexClient) CreateSubject(ctx context.Context, p protocol.CreateSubjectParams) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, protocol.MethodCreateSubject, p)
}

// UpdateSubject patches an existing subject's fields.
func (c *CortexClient) UpdateSubject(ctx context.Context, p protocol.UpdateSubjectParams) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, protocol.MethodUpdateSubject, p)
}

// DeleteSubjects deletes the named subjects.
func (c *CortexClient) DeleteSubjects(ctx context.Context, p protocol.DeleteSubjectsParams) error {
	_, err := call[json.RawMessage](ctx, c, protocol.MethodDeleteSubjects, p)
	return err
}

// QuerySubjects searches subjects with an optional filter, ordering, and
// pagination.
func (c *CortexClient) QuerySubjects(ctx context.Context, p protocol.QuerySubjectsParams) ([]protocol.Subject, error) {
	return call[[]protocol.Subject](ctx, c, protocol.MethodQuerySubjects, p)
}

// GetDemographicAttributes requests the set of recognized demographic
// attribute names.
func (c *CortexClient) GetDemographicAttributes(ctx context.Context, p protocol.DemographicAttributesParams) ([]string, error) {
	return call[[]string](ctx, c, protocol.MethodGetDemographicAttributes, p)
}
