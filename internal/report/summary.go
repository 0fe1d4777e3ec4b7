package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nao1215/biomail/internal/model"
)

// NewTable returns a go-pretty table writer in the style used by every
// terminal table of the CLI.
func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// SummaryWriter prints a short overview of a run for the terminal.
type SummaryWriter struct {
	baseWriter

	// showRows also prints the result rows under the overview.
	showRows bool
}

// SummaryWriterOption configures a SummaryWriter.
type SummaryWriterOption func(*SummaryWriter)

// WithRows includes the result rows in the output.
func WithRows(show bool) SummaryWriterOption {
	return func(w *SummaryWriter) {
		w.showRows = show
	}
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer, opts ...SummaryWriterOption) *SummaryWriter {
	w := &SummaryWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the overview table and, if enabled, the rows table.
func (w *SummaryWriter) Write(run *model.Run) (int, error) {
	summary := run.Summarize()
	found := summary.ByState[model.StatusEmailsFound]

	t := NewTable()
	t.SetTitle("biomail run (%s)", run.Source)
	t.AppendHeader(table.Row{"Handles", "Found", "Skipped", "Rows"})
	t.AppendRow(table.Row{summary.Handles, found, summary.Handles - found, summary.Rows})
	if run.Interrupted {
		t.AppendFooter(table.Row{"interrupted", "", "", ""})
	}

	total, err := fmt.Fprintln(w.output, t.Render())
	if err != nil || !w.showRows || !run.HasRows() {
		return total, err
	}

	rows := NewTable()
	rows.AppendHeader(table.Row{"Handle", "Email", "Source"})
	for _, r := range run.Rows {
		rows.AppendRow(table.Row{r.Handle, r.Email, r.Source.String()})
	}
	n, err := fmt.Fprintln(w.output, rows.Render())
	return total + n, err
}
