package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/biomail/internal/model"
)

var (
	// ErrUnknownFormat is returned for a format name no writer handles.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrNoRows is returned by WriteFile when the run produced nothing.
	// No file is created in that case.
	ErrNoRows = errors.New("no data")
)

// Format selects the output encoding of a result file.
type Format string

const (
	// FormatCSV is the default. Columns are handle,email,source.
	FormatCSV Format = "csv"
	// FormatJSON writes the rows and outcomes as a JSON document.
	FormatJSON Format = "json"
	// FormatMarkdown writes a Markdown document.
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath infers the format from a file extension.
// Unknown or missing extensions fall back to CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatCSV
	}
}

// ResolveFormat returns the explicit format when one is given and the
// format implied by path otherwise.
func ResolveFormat(name, path string) (Format, error) {
	if strings.TrimSpace(name) == "" {
		return FormatFromPath(path), nil
	}
	return ParseFormat(name)
}

// Writer renders a run to its destination.
// It returns the number of bytes written.
type Writer interface {
	Write(run *model.Run) (int, error)
}

// NewWriter returns the writer for format.
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// countingWriter tracks how many bytes went through an encoder that
// does not report it.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
