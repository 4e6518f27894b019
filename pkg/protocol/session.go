package protocol

import "encoding/json"

// Session lifecycle statuses accepted by createSession/updateSession.
const (
	SessionStatusOpen   = "open"
	SessionStatusActive = "active"
	SessionStatusClose  = "close"
)

// CreateSessionParams opens or activates a session against a headset.
type CreateSessionParams struct {
	CortexToken string `json:"cortexToken"`
	HeadsetID   string `json:"headset"`
	Status      string `json:"status"`
}

// UpdateSessionParams transitions an existing session (e.g. active→close).
type UpdateSessionParams struct {
	CortexToken string `json:"cortexToken"`
	Session     string `json:"session"`
	Status      string `json:"status"`
}

// QuerySessionsParams lists sessions visible to the current token.
type QuerySessionsParams struct {
	CortexToken string `json:"cortexToken"`
}

// Session is the result of createSession/updateSession and one entry of
// querySessions.
type Session struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	HeadsetID string `json:"headset,omitempty"`
	Owner     string `json:"owner,omitempty"`
	AppID     string `json:"appId,omitempty"`
	Started   string `json:"started,omitempty"`
	Recording bool   `json:"recording,omitempty"`
	RecordIDs []string `json:"recordIds,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (s *Session) UnmarshalJSON(data []byte) error {
	type alias Session
	return decodeWithExtras(data, (*alias)(s), &s.Extras)
}

func (s Session) MarshalJSON() ([]byte, error) {
	type alias Session
	return encodeWithExtras(alias(s), s.Extras)
}
