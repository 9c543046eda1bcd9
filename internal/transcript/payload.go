package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPayload reports a queue item with no stored transcript payload.
var ErrNoPayload = errors.New("no transcript payload")

// ToJSON encodes a transcript for queue persistence.
func ToJSON(t Transcript) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	return string(data), nil
}

// FromJSON decodes a transcript stored on a queue item. Unlike provenance,
// a missing or malformed payload is an error: downstream stages cannot run
// without it.
func FromJSON(data string) (Transcript, error) {
	if strings.TrimSpace(data) == "" {
		return Transcript{}, ErrNoPayload
	}
	var t Transcript
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return Transcript{}, fmt.Errorf("decode transcript: %w", err)
	}
	if len(t.Segments) == 0 && strings.TrimSpace(t.Text) == "" {
		return Transcript{}, errors.New("transcript payload has no content")
	}
	return t, nil
}
