// Package input reads the handle list.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ErrNoHandles is returned when the input contains no usable handle.
var ErrNoHandles = errors.New("no handles in input")

// ReadHandles reads the handle list at path.
func ReadHandles(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	handles, err := ParseHandles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return handles, nil
}

// ParseHandles reads one handle per line. Lines are trimmed, blank lines
// and lines starting with '#' are ignored, a leading '@' is removed and
// repeated handles are dropped.
func ParseHandles(r io.Reader) ([]string, error) {
	var handles []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		handle := strings.TrimSpace(scanner.Text())
		if line == 1 {
			handle = strings.TrimPrefix(handle, "\ufeff")
		}
		if handle == "" || strings.HasPrefix(handle, "#") {
			continue
		}
		handle = strings.TrimPrefix(handle, "@")
		if handle == "" {
			continue
		}
		if _, ok := seen[handle]; ok {
			slog.Debug("skipping duplicate handle", "handle", handle, "line", line)
			continue
		}
		seen[handle] = struct{}{}
		handles = append(handles, handle)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read handles: %w", err)
	}
	if len(handles) == 0 {
		return nil, ErrNoHandles
	}
	return handles, nil
}
