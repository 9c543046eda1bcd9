package ytdlp

// Config captures runtime settings for yt-dlp operations.
type Config struct {
	// Binary is the yt-dlp executable to invoke.
	Binary string
	// PreferCaptions enables the captions-first fast path for video URLs.
	PreferCaptions bool
	// AudioFormat is the extracted audio container (e.g., "mp3").
	AudioFormat string
	// AudioQuality is the extraction bitrate passed to --audio-quality.
	AudioQuality string
	// TimeoutSeconds bounds a single yt-dlp run. Zero disables the bound.
	TimeoutSeconds int
}

// yt-dlp configuration constants.
const (
	YtdlpCommand        = "yt-dlp"
	DefaultAudioFormat  = "mp3"
	DefaultAudioQuality = "192K"
	CaptionLangs        = "en"
	CaptionFormat       = "vtt"
	AudioSelector       = "bestaudio/best"

	outputTemplate = "%(id)s.%(ext)s"
)
