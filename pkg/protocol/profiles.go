package protocol

import "encoding/json"

// Profile setup statuses accepted by setupProfile.
const (
	ProfileStatusCreate    = "create"
	ProfileStatusLoad      = "load"
	ProfileStatusUnload    = "unload"
	ProfileStatusSave      = "save"
	ProfileStatusRename    = "rename"
	ProfileStatusDelete    = "delete"
)

// QueryProfileParams lists all profiles owned by the current user.
type QueryProfileParams struct {
	CortexToken string `json:"cortexToken"`
}

// ProfileInfo is one entry of queryProfile's result.
type ProfileInfo struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (p *ProfileInfo) UnmarshalJSON(data []byte) error {
	type alias ProfileInfo
	return decodeWithExtras(data, (*alias)(p), &p.Extras)
}

func (p ProfileInfo) MarshalJSON() ([]byte, error) {
	type alias ProfileInfo
	return encodeWithExtras(alias(p), p.Extras)
}

// GetCurrentProfileParams asks which profile, if any, is loaded on a
// headset.
type GetCurrentProfileParams struct {
	CortexToken string `json:"cortexToken"`
	HeadsetID   string `json:"headset"`
}

// SetupProfileParams creates, loads, saves, renames, or deletes a training
// profile.
type SetupProfileParams struct {
	CortexToken    string `json:"cortexToken"`
	Status         string `json:"status"`
	Profile        string `json:"profile"`
	HeadsetID      string `json:"headset,omitempty"`
	NewProfileName string `json:"newProfileName,omitempty"`
}

// LoadGuestProfileParams loads the anonymous default profile on a headset.
type LoadGuestProfileParams struct {
	CortexToken string `json:"cortexToken"`
	HeadsetID   string `json:"headset"`
}
