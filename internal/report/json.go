package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/biomail/internal/model"
)

// JSONWriter outputs runs in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONDocument is the top-level shape of a JSON result file.
type JSONDocument struct {
	Source      model.Source          `json:"source"`
	StartedAt   time.Time             `json:"started_at"`
	FinishedAt  time.Time             `json:"finished_at"`
	Interrupted bool                  `json:"interrupted,omitempty"`
	Rows        []model.ResultRow     `json:"rows"`
	Outcomes    []model.HandleOutcome `json:"outcomes"`
}

// NewJSONDocument copies the exported parts of a run.
// Profile snapshots are left out; they belong to the history database.
func NewJSONDocument(run *model.Run) *JSONDocument {
	return &JSONDocument{
		Source:      run.Source,
		StartedAt:   run.StartedAt,
		FinishedAt:  run.FinishedAt,
		Interrupted: run.Interrupted,
		Rows:        run.Rows,
		Outcomes:    run.Outcomes,
	}
}

// Write outputs the run as a JSONDocument.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	return w.Encode(NewJSONDocument(run))
}

// Encode marshals any value with the writer's indentation settings
// and terminates it with a newline.
func (w *JSONWriter) Encode(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
