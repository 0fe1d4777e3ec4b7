// Package report renders the rows of a run into result files.
//
// Three file formats are supported:
//   - CSVWriter: the handle,email,source table
//   - JSONWriter: rows plus per-handle outcomes for tool integration
//   - MarkdownWriter: a shareable document with a status chart
//
// SummaryWriter prints a short table of the run to the terminal.
//
// All writers implement Writer so the command layer can pick one from
// the --format flag or the output file extension.
package report
