package report

import (
	"encoding/csv"
	"io"

	"github.com/nao1215/biomail/internal/model"
)

// csvHeader is the column order of result files.
var csvHeader = []string{"handle", "email", "source"}

// CSVWriter writes one line per result row under a fixed header.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the header followed by every row of the run.
func (w *CSVWriter) Write(run *model.Run) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}
	for _, row := range run.Rows {
		if err := cw.Write([]string{row.Handle, row.Email, row.Source.String()}); err != nil {
			return counter.n, err
		}
	}
	cw.Flush()
	return counter.n, cw.Error()
}
