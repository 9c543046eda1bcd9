package whisper

// Config captures runtime settings for Whisper transcription.
type Config struct {
	// Binary is the whisper executable to invoke.
	Binary string
	// Model is the Whisper model to use (e.g., "base", "large-v3").
	Model string
	// Language forces a transcription language; empty lets Whisper detect it.
	Language string
	// TimeoutSeconds bounds a single transcription run. Zero disables the bound.
	TimeoutSeconds int
}

// Whisper configuration constants.
const (
	WhisperCommand = "whisper"
	DefaultModel   = "base"
	OutputFormat   = "json"
)
