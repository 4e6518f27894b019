package protocol

import "encoding/json"

// Training statuses accepted by the training method.
const (
	TrainingStatusStart   = "start"
	TrainingStatusAccept  = "accept"
	TrainingStatusReject  = "reject"
	TrainingStatusReset   = "reset"
	TrainingStatusErase   = "erase"
)

// Detection types the training method operates on.
const (
	DetectionMentalCommand    = "mentalCommand"
	DetectionFacialExpression = "facialExpression"
)

// Get/set status used by the mentalCommand*/facialExpression* query-or-set
// methods.
const (
	StatusGet = "get"
	StatusSet = "set"
)

// TrainingParams drives the BCI training state machine for one action.
type TrainingParams struct {
	CortexToken   string `json:"cortexToken"`
	Session       string `json:"session"`
	DetectionType string `json:"detection"`
	Action        string `json:"action"`
	Status        string `json:"status"`
}

// TrainingResult is the result of the training method.
type TrainingResult struct {
	ID any `json:"id,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (t *TrainingResult) UnmarshalJSON(data []byte) error {
	type alias TrainingResult
	return decodeWithExtras(data, (*alias)(t), &t.Extras)
}

func (t TrainingResult) MarshalJSON() ([]byte, error) {
	type alias TrainingResult
	return encodeWithExtras(alias(t), t.Extras)
}

// DetectionInfoParams requests the action/control/event vocabulary for a
// detection type.
type DetectionInfoParams struct {
	DetectionType string `json:"detection"`
}

// DetectionInfo describes the actions, controls, and events a detection
// type supports.
type DetectionInfo struct {
	ActionTypes []string `json:"actions,omitempty"`
	Controls    []string `json:"controls,omitempty"`
	Events      []string `json:"events,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (d *DetectionInfo) UnmarshalJSON(data []byte) error {
	type alias DetectionInfo
	return decodeWithExtras(data, (*alias)(d), &d.Extras)
}

func (d DetectionInfo) MarshalJSON() ([]byte, error) {
	type alias DetectionInfo
	return encodeWithExtras(alias(d), d.Extras)
}

// GetTrainedSignatureActionsParams lists the actions with a trained
// signature for a detection type, scoped by session or profile.
type GetTrainedSignatureActionsParams struct {
	CortexToken   string `json:"cortexToken"`
	DetectionType string `json:"detection"`
	Session       string `json:"session,omitempty"`
	Profile       string `json:"profile,omitempty"`
}

// GetTrainingTimeParams requests remaining/elapsed training time for a
// session.
type GetTrainingTimeParams struct {
	CortexToken string `json:"cortexToken"`
	Session     string `json:"session"`
	DetectionType string `json:"detection,omitempty"`
}

// FacialExpressionSignatureTypeParams gets or sets the universal/trained
// signature for facial expression detection. Session and Profile are
// mutually exclusive; Signature is required when Status is StatusSet.
type FacialExpressionSignatureTypeParams struct {
	Status    string `json:"status"`
	Profile   string `json:"profile,omitempty"`
	Session   string `json:"session,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// Validate enforces the session/profile exclusivity and the
// signature-required-on-set rule before the request reaches the wire.
func (p FacialExpressionSignatureTypeParams) Validate() error {
	if err := validateSessionOrProfile(p.Session, p.Profile); err != nil {
		return err
	}
	if p.Status == StatusSet && p.Signature == "" {
		return errInvalidArgument("facialExpressionSignatureType", "signature is required when status=set")
	}
	return nil
}

// FacialExpressionThresholdParams gets or sets the sensitivity threshold
// for one facial expression action.
type FacialExpressionThresholdParams struct {
	Status  string `json:"status"`
	Action  string `json:"action"`
	Profile string `json:"profile,omitempty"`
	Session string `json:"session,omitempty"`
	Value   *int   `json:"value,omitempty"`
}

func (p FacialExpressionThresholdParams) Validate() error {
	if err := validateSessionOrProfile(p.Session, p.Profile); err != nil {
		return err
	}
	if p.Status == StatusSet && p.Value == nil {
		return errInvalidArgument("facialExpressionThreshold", "value is required when status=set")
	}
	return nil
}

// MentalCommandActiveActionParams gets or sets the set of active mental
// command actions.
type MentalCommandActiveActionParams struct {
	Status  string   `json:"status"`
	Profile string   `json:"profile,omitempty"`
	Session string   `json:"session,omitempty"`
	Action  []string `json:"action,omitempty"`
}

func (p MentalCommandActiveActionParams) Validate() error {
	if err := validateSessionOrProfile(p.Session, p.Profile); err != nil {
		return err
	}
	if p.Status == StatusSet && len(p.Action) == 0 {
		return errInvalidArgument("mentalCommandActiveAction", "action is required when status=set")
	}
	return nil
}

// MentalCommandBrainMapParams requests the 3D brain map coordinates for
// trained mental command actions.
type MentalCommandBrainMapParams struct {
	Session string `json:"session,omitempty"`
	Profile string `json:"profile,omitempty"`
}

func (p MentalCommandBrainMapParams) Validate() error {
	return validateSessionOrProfile(p.Session, p.Profile)
}

// MentalCommandTrainingThresholdParams gets or sets the activation
// threshold for mental command actions.
type MentalCommandTrainingThresholdParams struct {
	Session string `json:"session,omitempty"`
	Profile string `json:"profile,omitempty"`
	Status  string `json:"status"`
	Value   *int   `json:"value,omitempty"`
}

func (p MentalCommandTrainingThresholdParams) Validate() error {
	if err := validateSessionOrProfile(p.Session, p.Profile); err != nil {
		return err
	}
	if p.Status == StatusSet && p.Value == nil {
		return errInvalidArgument("mentalCommandTrainingThreshold", "value is required when status=set")
	}
	return nil
}

// MentalCommandActionSensitivityParams gets or sets per-action sensitivity
// values (1-10) for the currently active mental command actions.
type MentalCommandActionSensitivityParams struct {
	Session string `json:"session,omitempty"`
	Profile string `json:"profile,omitempty"`
	Status  string `json:"status"`
	Values  []int  `json:"values,omitempty"`
}

func (p MentalCommandActionSensitivityParams) Validate() error {
	if err := validateSessionOrProfile(p.Session, p.Profile); err != nil {
		return err
	}
	if p.Status == StatusSet && len(p.Values) == 0 {
		return errInvalidArgument("mentalCommandActionSensitivity", "values is required when status=set")
	}
	return nil
}

func validateSessionOrProfile(session, profile string) error {
	if (session == "") == (profile == "") {
		return errInvalidArgument("", "exactly one of session or profile must be set")
	}
	return nil
}
