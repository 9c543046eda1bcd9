package queue

import (
	"encoding/json"
	"strings"
)

// Provenance records where a job's media came from. It is stored as JSON on
// the queue item and surfaced in rendered artifacts.
type Provenance struct {
	URL             string  `json:"url,omitempty"`
	Author          string  `json:"author,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}

// ProvenanceFromJSON decodes stored provenance, tolerating blank or malformed
// payloads by returning the zero value.
func ProvenanceFromJSON(data string) Provenance {
	var prov Provenance
	if strings.TrimSpace(data) == "" {
		return prov
	}
	_ = json.Unmarshal([]byte(data), &prov)
	return prov
}

// ToJSON encodes the provenance for persistence. Empty provenance encodes to
// a blank string so the column stays NULL-ish for ad hoc inspection.
func (p Provenance) ToJSON() string {
	if p == (Provenance{}) {
		return ""
	}
	data, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(data)
}
