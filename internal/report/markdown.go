package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/biomail/internal/model"
)

// statusOrder fixes the row order of the status table and chart.
var statusOrder = []model.Status{
	model.StatusEmailsFound,
	model.StatusNoEmail,
	model.StatusNoBio,
	model.StatusNoWebsite,
	model.StatusNotFound,
	model.StatusUnreachable,
	model.StatusFailed,
	model.StatusPending,
}

// MarkdownWriter outputs runs as a Markdown document built with
// nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := run.Summarize()

	w.writeHeader(md, run, summary)
	w.writeRows(md, run)
	w.writeStatuses(md, summary)
	w.writeSkipped(md, run)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by biomail*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run, summary model.Summary) {
	md.H1("Contact Emails")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + run.Source.String() + "`"},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Handles", strconv.Itoa(summary.Handles)},
			{"Emails", strconv.Itoa(summary.Rows)},
		},
	})
	md.PlainText("")

	if run.Interrupted {
		md.Warningf("The run was interrupted after %d handle(s); the rows below are partial.", summary.Handles)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeRows(md *markdown.Markdown, run *model.Run) {
	md.H2("Results")
	md.PlainText("")

	if !run.HasRows() {
		md.Note("No verified email addresses were found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Rows))
	for i, r := range run.Rows {
		rows[i] = []string{"@" + r.Handle, r.Email, r.Source.String()}
	}
	md.Table(markdown.TableSet{
		Header: csvHeader,
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeStatuses(md *markdown.Markdown, summary model.Summary) {
	if summary.Handles == 0 {
		return
	}

	md.H2("Handle Status")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Handles by status"),
		piechart.WithShowData(true),
	)

	rows := make([][]string, 0, len(statusOrder))
	for _, status := range statusOrder {
		n := summary.ByState[status]
		if n == 0 {
			continue
		}
		rows = append(rows, []string{status.String(), strconv.Itoa(n)})
		chart.LabelAndIntValue(status.String(), uint64(n))
	}

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Handles"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeSkipped lists the handles that ended with an explanation.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, run *model.Run) {
	var items []string
	for _, o := range run.Outcomes {
		if o.Reason == "" {
			continue
		}
		items = append(items, "@"+o.Handle+": "+o.Status.String()+" ("+o.Reason+")")
	}
	if len(items) == 0 {
		return
	}

	md.H2("Skipped Handles")
	md.PlainText("")
	md.BulletList(items...)
	md.PlainText("")
}
