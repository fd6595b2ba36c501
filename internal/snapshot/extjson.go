package snapshot

import (
	"encoding/json"
	"time"
)

// The export files use MongoDB extended JSON: object ids arrive either as
// plain strings or as {"$oid": "..."}, timestamps either as RFC 3339 strings
// or as {"$date": "..."}. Both wrapper types decode to their zero value on
// anything unparseable so that record-level validation can drop the row
// instead of failing the whole file.

type objectID string

func (o *objectID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = objectID(s)
		return nil
	}

	var wrapped struct {
		OID string `json:"$oid"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		*o = objectID(wrapped.OID)
		return nil
	}

	*o = ""
	return nil
}

type extTime struct {
	time.Time
}

func (e *extTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Time = parseExportTime(s)
		return nil
	}

	var wrapped struct {
		Date string `json:"$date"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		e.Time = parseExportTime(wrapped.Date)
		return nil
	}

	e.Time = time.Time{}
	return nil
}

func parseExportTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
