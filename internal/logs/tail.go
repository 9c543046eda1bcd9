package logs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Tail returns the last limit lines of the file at path, oldest first. A
// missing file yields no lines and no error so callers can poll a log that
// has not been created yet.
func Tail(path string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("log path %q is a directory", path)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	ring := make([]string, limit)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}
