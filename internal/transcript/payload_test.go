package transcript

import (
	"errors"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	original := Transcript{
		Segments: []Segment{
			{Start: 0, End: 2.5, Text: "Hello world"},
			{Start: 2.5, End: 5, Text: "Goodbye"},
		},
		Text:     "Hello world Goodbye",
		Language: "en",
		Timed:    true,
	}

	encoded, err := ToJSON(original)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	decoded, err := FromJSON(encoded)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if decoded.Text != original.Text || decoded.Language != original.Language || !decoded.Timed {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if len(decoded.Segments) != 2 || decoded.Segments[1].End != 5 {
		t.Fatalf("segments mismatch: %+v", decoded.Segments)
	}
}

func TestFromJSONRejectsMissingPayload(t *testing.T) {
	if _, err := FromJSON("   "); !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}
	if _, err := FromJSON("{broken"); err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
	if _, err := FromJSON(`{"segments":[],"text":"  "}`); err == nil {
		t.Fatal("expected error for contentless payload")
	}
}
