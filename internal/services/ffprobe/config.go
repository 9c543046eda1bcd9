package ffprobe

// Config captures runtime settings for media inspection.
type Config struct {
	// Binary is the ffprobe executable to invoke.
	Binary string
	// TimeoutSeconds bounds a single inspection run. Zero disables the bound.
	TimeoutSeconds int
}

// FFprobeCommand is the default ffprobe executable name.
const FFprobeCommand = "ffprobe"
