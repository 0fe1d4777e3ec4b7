package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/database"
	"github.com/nao1215/biomail/internal/report"
)

// defaultHistoryLimit is the number of runs listed without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List past runs or show the rows of one run",
		Long: `History reads the runs recorded by scrape.

Without arguments the most recent runs are listed. With a run ID the
rows of that run are printed, or written to a file with --output.

Examples:
  biomail history
  biomail history 12
  biomail history 12 -o run12.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Number of runs to list (0 lists all)")
	cmd.Flags().StringP("output", "o", "", "Write the rows of the run to a file")
	cmd.Flags().StringP("format", "f", "", "Output format for --output: csv, json or markdown")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	db, err := database.Open(dir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 0 {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		runs, err := db.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return printRuns(out, runs)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", args[0], err)
	}
	run, err := db.LoadRun(cmd.Context(), id)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if output == "" {
		_, err := report.NewSummaryWriter(out, report.WithRows(true)).Write(run)
		return err
	}

	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ResolveFormat(formatName, output)
	if err != nil {
		return err
	}
	if err := report.WriteFile(output, format, run); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d row(s) of run %d to %s\n", len(run.Rows), id, output)
	return nil
}

func printRuns(out io.Writer, runs []database.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded yet.")
		return err
	}

	t := report.NewTable()
	t.AppendHeader(table.Row{"ID", "Started", "Source", "Handles", "Emails", "Duration", "Status"})
	for _, r := range runs {
		status := "complete"
		if r.Interrupted {
			status = "interrupted"
		}
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Source.String(),
			r.Handles,
			r.Emails,
			duration,
			status,
		})
	}
	_, err := fmt.Fprintln(out, t.Render())
	return err
}
