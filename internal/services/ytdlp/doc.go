// Package ytdlp acquires remote video sources through the yt-dlp CLI.
//
// Two acquisition paths are offered: fetching an existing caption track (the
// fast path, no speech recognition needed) and extracting the best audio
// stream for Whisper. Both report video metadata from yt-dlp's JSON probe so
// the pipeline can brand artifacts with title, uploader, and duration.
package ytdlp
