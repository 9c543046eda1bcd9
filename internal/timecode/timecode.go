package timecode

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedTimestamp reports a cue timing line that does not match the
// HH:MM:SS<sep>mmm --> HH:MM:SS<sep>mmm pattern.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// Cue timing line patterns. The millisecond separator is format-specific:
// comma for SRT, period for WebVTT. Trailing cue settings (as emitted by
// YouTube auto-captions) are ignored.
var (
	srtRangePattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2}),(\d{3})`)
	vttRangePattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})\.(\d{3})`)
)

// FormatSRT renders a second offset as an SRT timestamp (HH:MM:SS,mmm).
// Input must be non-negative and finite.
func FormatSRT(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatVTT renders a second offset as a WebVTT timestamp (HH:MM:SS.mmm).
// Input must be non-negative and finite.
func FormatVTT(seconds float64) string {
	h, m, s, ms := splitMillis(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// FormatDisplay renders a second offset as MM:SS for segment badges. Minutes
// are total minutes rather than minutes-within-the-hour, so offsets past one
// hour render like "61:40" instead of carrying an hour field.
func FormatDisplay(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatDuration renders a second count as a coarse human-readable duration:
// "Xh Ym Zs", "Ym Zs", or "Zs" depending on the leading non-zero unit.
func FormatDuration(seconds float64) string {
	total := int64(seconds)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// ParseSRTRange extracts the start and end offsets from an SRT cue timing
// line. Returns ErrMalformedTimestamp when the line does not match.
func ParseSRTRange(line string) (start, end float64, err error) {
	return parseRange(srtRangePattern, line)
}

// ParseVTTRange extracts the start and end offsets from a WebVTT cue timing
// line. Returns ErrMalformedTimestamp when the line does not match.
func ParseVTTRange(line string) (start, end float64, err error) {
	return parseRange(vttRangePattern, line)
}

func parseRange(pattern *regexp.Regexp, line string) (float64, float64, error) {
	match := pattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, line)
	}
	start := groupSeconds(match[1:5])
	end := groupSeconds(match[5:9])
	return start, end, nil
}

func groupSeconds(groups []string) float64 {
	hours, _ := strconv.Atoi(groups[0])
	minutes, _ := strconv.Atoi(groups[1])
	seconds, _ := strconv.Atoi(groups[2])
	millis, _ := strconv.Atoi(groups[3])
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000
}

func splitMillis(seconds float64) (h, m, s, ms int64) {
	total := int64(math.Round(seconds * 1000))
	if total < 0 {
		total = 0
	}
	ms = total % 1000
	rest := total / 1000
	h = rest / 3600
	m = (rest % 3600) / 60
	s = rest % 60
	return h, m, s, ms
}
