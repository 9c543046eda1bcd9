package stage

import (
	"quill/internal/queue"
	"quill/internal/services"
	"quill/internal/transcript"
)

// LoadTranscript decodes the transcript payload stored on a queue item.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func LoadTranscript(item *queue.Item) (transcript.Transcript, error) {
	tr, err := transcript.FromJSON(item.TranscriptJSON)
	if err != nil {
		return transcript.Transcript{}, services.Wrap(
			services.ErrValidation, "stage", "load transcript",
			"Transcript payload missing or invalid; rerun transcription", err)
	}
	return tr, nil
}
