package client

import (
	"context"
	"encoding/json"

	"github.com/emotiv/cortexgo/pkg/protocol"
)

// Train drives the BCI training state machine for one action: start,
// accept, reject, reset, or erase.
func (c *CortexClient) Train(ctx context.Context, p protocol.TrainingParams) (protocol.TrainingResult, error) {
	return call[protocol.TrainingResult](ctx, c, protocol.MethodTraining, p)
}

// GetDetectionInfo reports the action/control/event vocabulary for a
// detection type.
func (c *CortexClient) GetDetectionInfo(ctx context.Context, p protocol.DetectionInfoParams) (protocol.DetectionInfo, error) {
	return call[protocol.DetectionInfo](ctx, c, protocol.MethodGetDetectionInfo, p)
}

// GetTrainedSignatureActions lists the actions with a trained signature
// for a detection type, scoped by session or profile.
func (c *CortexClient) GetTrainedSignatureActions(ctx context.Context, p protocol.GetTrainedSignatureActionsParams) ([]string, error) {
	return call[[]string](ctx, c, protocol.MethodGetTrainedSignatureActions, p)
}

// GetTrainingTime reports remaining/elapsed training time for a session.
func (c *CortexClient) GetTrainingTime(ctx context.Context, p protocol.GetTrainingTimeParams) (float64, error) {
	return call[float64](ctx, c, protocol.MethodGetTrainingTime, p)
}

// FacialExpressionSignatureType gets or sets the universal/trained
// signature for facial expression detection.
func (c *CortexClient) FacialExpressionSignatureType(ctx context.Context, p protocol.FacialExpressionSignatureTypeParams) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	return call[string](ctx, c, protocol.MethodFacialExpressionSignatureType, p)
}

// FacialExpressionThreshold gets or sets the sensitivity threshold for one
// facial expression action.
func (c *CortexClient) FacialExpressionThreshold(ctx context.Context, p protocol.FacialExpressionThresholdParams) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return call[int](ctx, c, protocol.MethodFacialExpressionThreshold, p)
}

// MentalCommandActiveAction gets or sets the set of active mental command
// actions.
func (c *CortexClient) MentalCommandActiveAction(ctx context.Context, p protocol.MentalCommandActiveActionParams) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return call[[]string](ctx, c, protocol.MethodMentalCommandActiveAction, p)
}

// MentalCommandBrainMap requests the 3D brain map coordinates for trained
// mental command actions.
func (c *CortexClient) MentalCommandBrainMap(ctx context.Context, p protocol.MentalCommandBrainMapParams) (json.RawMessage, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return call[json.RawMessage](ctx, c, protocol.MethodMentalCommandBrainMap, p)
}

// MentalCommandTrainingThreshold gets or sets the activation threshold for
// mental command actions.
func (c *CortexClient) MentalCommandTrainingThreshold(ctx context.Context, p protocol.MentalCommandTrainingThresholdParams) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return call[int](ctx, c, protocol.MethodMentalCommandTrainingThreshold, p)
}

// MentalCommandActionSensitivity gets or sets per-action sensitivity
// values for the currently active mental command actions.
func (c *CortexClient) MentalCommandActionSensitivity(ctx context.Context, p protocol.MentalCommandActionSensitivityParams) ([]int, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return call[[]int](ctx, c, protocol.MethodMentalCommandActionSensitivity, p)
}
