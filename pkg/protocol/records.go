package protocol

import "encoding/json"

// CreateRecordParams starts a new record within an active session.
type CreateRecordParams struct {
	CortexToken string   `json:"cortexToken"`
	Session     string   `json:"session"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Subject     string   `json:"subjectName,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// StopRecordParams stops the record currently open on a session.
type StopRecordParams struct {
	CortexToken string `json:"cortexToken"`
	Session     string `json:"session"`
}

// UpdateRecordParams patches record metadata. Unset fields are omitted and
// left unchanged server-side.
type UpdateRecordParams struct {
	CortexToken string   `json:"cortexToken"`
	RecordID    string   `json:"record"`
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// DeleteRecordParams permanently deletes the given records.
type DeleteRecordParams struct {
	CortexToken string   `json:"cortexToken"`
	RecordIDs   []string `json:"records"`
}

// ExportRecordParams exports one or more records to disk in a given format.
type ExportRecordParams struct {
	CortexToken string   `json:"cortexToken"`
	RecordIDs   []string `json:"recordIds"`
	Folder      string   `json:"folder"`
	Format      string   `json:"format"`
	StreamTypes []string `json:"streamTypes,omitempty"`
	Version     string   `json:"version,omitempty"`
}

// QueryRecordsParams searches records with an optional filter, ordering,
// and pagination.
type QueryRecordsParams struct {
	CortexToken string              `json:"cortexToken"`
	Query       map[string]any      `json:"query,omitempty"`
	OrderBy     []map[string]string `json:"orderBy,omitempty"`
	Limit       *int                `json:"limit,omitempty"`
	Offset      *int                `json:"offset,omitempty"`
}

// GetRecordInfosParams fetches full metadata for specific record ids.
type GetRecordInfosParams struct {
	CortexToken string   `json:"cortexToken"`
	RecordIDs   []string `json:"records"`
}

// RecordInfo is the per-record metadata shape returned by
// createRecord/stopRecord/getRecordInfos/queryRecords.
type RecordInfo struct {
	UUID        string   `json:"uuid"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"startDatetime,omitempty"`
	EndDate     string   `json:"endDatetime,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Extras map[string]json.RawMessage `json:"-"`
}

func (r *RecordInfo) UnmarshalJSON(data []byte) error {
	type alias RecordInfo
	return decodeWithExtras(data, (*alias)(r), &r.Extras)
}

func (r RecordInfo) MarshalJSON() ([]byte, error) {
	type alias RecordInfo
	return encodeWithExtras(alias(r), r.Extras)
}

// ConfigOptOutParams toggles data-sharing opt-out for the current user.
type ConfigOptOutParams struct {
	CortexToken string `json:"cortexToken"`
	Status      string `json:"status"`
}

// RequestDownloadRecordDataParams asks Cortex to prepare a download bundle
// for the given records.
type RequestDownloadRecordDataParams struct {
	CortexToken string   `json:"cortexToken"`
	RecordIDs   []string `json:"recordIds"`
}

// InjectMarkerParams injects a labeled marker at a point in time within an
// active session/record.
type InjectMarkerParams struct {
	CortexToken string  `json:"cortexToken"`
	Session     string  `json:"session"`
	Label       string  `json:"label"`
	Value       any     `json:"value"`
	Port        string  `json:"port,omitempty"`
	Time        float64 `json:"time"`
}

// UpdateMarkerParams patches a previously injected marker.
type UpdateMarkerParams struct {
	CortexToken string   `json:"cortexToken"`
	Session     string   `json:"session"`
	MarkerID    string   `json:"markerId"`
	Time        *float64 `json:"time,omitempty"`
	Value       any      `json:"value,omitempty"`
}
