package feed

import (
	"bytes"
	"encoding/json"
)

// ShotRecord is a shot as delivered to the feed, either in the initial
// batch or as a live event. Decoding is total: a payload that is not a
// JSON object yields the zero record (empty id, Late, not scored).
type ShotRecord struct {
	ID             ID             `json:"id"`
	Classification Classification `json:"classification"`
	Scored         StrictBool     `json:"scored"`
}

// NewRecord builds a record from already-typed values
func NewRecord(id string, c Classification, scored bool) ShotRecord {
	return ShotRecord{ID: ID(id), Classification: c, Scored: StrictBool(scored)}
}

// Batch is the body of GET /shots
type Batch struct {
	Shots []ShotRecord `json:"shots"`
}

// DecodeRecord decodes a single live payload. It never fails.
func DecodeRecord(data []byte) ShotRecord {
	var rec ShotRecord
	_ = rec.UnmarshalJSON(data)
	return rec
}

func (r *ShotRecord) UnmarshalJSON(data []byte) error {
	*r = ShotRecord{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	if raw, ok := fields["id"]; ok {
		_ = r.ID.UnmarshalJSON(raw)
	}
	if raw, ok := fields["classification"]; ok {
		_ = r.Classification.UnmarshalJSON(raw)
	}
	if raw, ok := fields["scored"]; ok {
		_ = r.Scored.UnmarshalJSON(raw)
	}
	return nil
}

// ID is an opaque shot identifier rendered verbatim. Strings keep their
// text, numbers keep their literal form, null is empty.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || string(data) == "null":
		*id = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*id = ID(data)
			return nil
		}
		*id = ID(s)
	default:
		*id = ID(data)
	}
	return nil
}

func (id ID) String() string {
	return string(id)
}

// StrictBool is true only for the JSON literal true
type StrictBool bool

func (b *StrictBool) UnmarshalJSON(data []byte) error {
	*b = StrictBool(string(bytes.TrimSpace(data)) == "true")
	return nil
}
