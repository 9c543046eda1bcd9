package deps

import "quill/internal/config"

// Check reports availability of the external tools the pipeline shells out
// to, resolved against the configured binary names. FFmpeg and ffprobe are
// optional; ffmpeg is only exercised when yt-dlp extracts audio for
// recognition, ffprobe only to read metadata from local media files.
func Check(cfg *config.Config) []Status {
	if cfg == nil {
		return nil
	}
	statuses := CheckBinaries([]Requirement{
		{
			Name:        "Whisper",
			Command:     cfg.WhisperBinary(),
			Description: "Speech recognition for media without captions",
		},
		{
			Name:        "yt-dlp",
			Command:     cfg.YtdlpBinary(),
			Description: "Caption fetch and audio download for video URLs",
		},
		{
			Name:        "ffprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Duration and stream inspection for local media files",
			Optional:    true,
		},
	})
	ffmpeg := CheckFFmpegForYtdlp(cfg.YtdlpBinary())
	ffmpeg.Optional = true
	statuses = append(statuses, ffmpeg)
	return statuses
}
