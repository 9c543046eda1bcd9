package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForYtdlp reports the FFmpeg binary yt-dlp will execute.
//
// yt-dlp shells out to ffmpeg for audio extraction and prefers a binary that
// sits next to the yt-dlp executable before falling back to resolving
// "ffmpeg" from PATH. This helper mirrors that lookup so Quill status output
// matches what yt-dlp will actually run.
func CheckFFmpegForYtdlp(ytdlpCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by yt-dlp for audio extraction",
	}

	ytdlpBinary := strings.TrimSpace(ytdlpCommand)
	if ytdlpBinary != "" {
		if resolved, err := exec.LookPath(ytdlpBinary); err == nil {
			if candidate, ok := ffmpegSidecarCandidate(resolved); ok {
				if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
					result.Command = candidate
					result.Available = true
					return result
				}
			}
		}
	}

	ffmpegName := "ffmpeg"
	if ffmpegPath, err := exec.LookPath(ffmpegName); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = ffmpegName
	result.Available = false
	result.Detail = fmt.Sprintf("binary %q not found", ffmpegName)
	return result
}

func ffmpegSidecarCandidate(ytdlpPath string) (string, bool) {
	if ytdlpPath == "" {
		return "", false
	}
	dir := filepath.Dir(ytdlpPath)
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
