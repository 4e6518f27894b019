package protocol

import "encoding/json"

// SubscribeParams requests delivery of one or more data streams for a
// session.
type SubscribeParams struct {
	CortexToken string   `json:"cortexToken"`
	Session     string   `json:"session"`
	Streams     []string `json:"streams"`
}

// StreamSuccess is one entry of subscribe/unsubscribe's success array: the
// stream name plus whatever per-stream metadata Cortex attaches (e.g. `cols`
// describing channel layout for eeg/mot/pow, or `sid`).
type StreamSuccess struct {
	StreamName string          `json:"streamName"`
	Cols       json.RawMessage `json:"cols,omitempty"`
	Sid        string          `json:"sid,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (s *StreamSuccess) UnmarshalJSON(data []byte) error {
	type alias StreamSuccess
	return decodeWithExtras(data, (*alias)(s), &s.Extras)
}

func (s StreamSuccess) MarshalJSON() ([]byte, error) {
	type alias StreamSuccess
	return encodeWithExtras(alias(s), s.Extras)
}

// StreamFailure is one entry of subscribe/unsubscribe's failure array.
type StreamFailure struct {
	StreamName string `json:"streamName"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

// SubscribeResult is the result of subscribe/unsubscribe: per-stream
// success/failure partitioning (a single call can partially succeed).
type SubscribeResult struct {
	Success []StreamSuccess `json:"success,omitempty"`
	Failure []StreamFailure `json:"failure,omitempty"`
}
