package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/nao1215/biomail/internal/database"
	"github.com/nao1215/biomail/internal/model"
)

// seedHistory stores one run with two rows and returns the database dir
// and the run ID.
func seedHistory(t *testing.T) (string, int64) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	run := model.NewRun(model.SourceProfileBio)
	job := model.NewHandleJob("alice", model.SourceProfileBio)
	job.Verified = []string{"alice@example.com", "press@example.com"}
	job.Emit()
	run.Add(job)
	run.Finish()

	id, err := db.SaveRun(context.Background(), run)
	if err != nil {
		t.Fatal(err)
	}
	return dir, id
}

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewHistoryCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// TestHistoryCmd tests listing and showing recorded runs.
func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports an empty history without a database", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "none")
		out, err := executeHistory(t, "--db-dir", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No runs recorded yet.") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("history must not create the database")
		}
	})

	t.Run("lists runs", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		out, err := executeHistory(t, "--db-dir", dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"SOURCE", "profile-bio", "complete"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("shows the rows of one run", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		out, err := executeHistory(t, "--db-dir", dir, formatID(id))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "press@example.com") {
			t.Errorf("expected rows in output:\n%s", out)
		}
	})

	t.Run("exports a run to a file", func(t *testing.T) {
		t.Parallel()

		dir, id := seedHistory(t)
		path := filepath.Join(t.TempDir(), "run.json")
		out, err := executeHistory(t, "--db-dir", dir, "-o", path, formatID(id))
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "Wrote 2 row(s)") {
			t.Errorf("unexpected output:\n%s", out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), `"email": "alice@example.com"`) {
			t.Errorf("expected JSON rows, got:\n%s", data)
		}
	})

	t.Run("unknown run ID is an error", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		if _, err := executeHistory(t, "--db-dir", dir, "999"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("non-numeric run ID is an error", func(t *testing.T) {
		t.Parallel()

		dir, _ := seedHistory(t)
		if _, err := executeHistory(t, "--db-dir", dir, "latest"); err == nil {
			t.Error("expected an error")
		}
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
