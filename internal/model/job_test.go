package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestHandleJobAddCandidates tests ordered deduplication of candidates.
func TestHandleJobAddCandidates(t *testing.T) {
	t.Parallel()

	t.Run("keeps first discovery order", func(t *testing.T) {
		t.Parallel()

		job := NewHandleJob("alice", SourceProfileBio)
		job.AddCandidates("b@example.com", "a@example.com")
		job.AddCandidates("a@example.com", "c@example.com", "b@example.com")

		want := []string{"b@example.com", "a@example.com", "c@example.com"}
		if diff := cmp.Diff(want, job.Candidates); diff != "" {
			t.Errorf("candidates mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no candidates leaves slice nil", func(t *testing.T) {
		t.Parallel()

		job := NewHandleJob("alice", SourceProfileBio)
		job.AddCandidates()
		if job.Candidates != nil {
			t.Errorf("expected nil candidates, got %v", job.Candidates)
		}
	})
}

// TestHandleJobEmit tests row emission and status updates.
func TestHandleJobEmit(t *testing.T) {
	t.Parallel()

	t.Run("verified emails become rows", func(t *testing.T) {
		t.Parallel()

		job := NewHandleJob("alice", SourceExternalWebsite)
		job.Verified = []string{"hello@alice.biz"}
		job.Emit()

		want := []ResultRow{{Handle: "alice", Email: "hello@alice.biz", Source: SourceExternalWebsite}}
		if diff := cmp.Diff(want, job.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
		if job.Status != StatusEmailsFound {
			t.Errorf("expected StatusEmailsFound, got %v", job.Status)
		}
	})

	t.Run("nothing verified marks no-email", func(t *testing.T) {
		t.Parallel()

		job := NewHandleJob("bob", SourceProfileBio)
		job.Emit()

		if len(job.Rows) != 0 {
			t.Errorf("expected no rows, got %d", len(job.Rows))
		}
		if job.Status != StatusNoEmail {
			t.Errorf("expected StatusNoEmail, got %v", job.Status)
		}
	})

	t.Run("earlier status is preserved when nothing verified", func(t *testing.T) {
		t.Parallel()

		job := NewHandleJob("bob", SourceProfileBio)
		job.Status = StatusNoBio
		job.Emit()

		if job.Status != StatusNoBio {
			t.Errorf("expected StatusNoBio, got %v", job.Status)
		}
	})
}

// TestRunAdd tests accumulation of jobs into a run.
func TestRunAdd(t *testing.T) {
	t.Parallel()

	run := NewRun(SourceProfileBio)

	alice := NewHandleJob("alice", SourceProfileBio)
	alice.Profile = &Profile{Handle: "alice"}
	alice.Verified = []string{"alice@example.com"}
	alice.Emit()

	bob := NewHandleJob("bob", SourceProfileBio)
	bob.Skip(StatusNotFound, "profile not found")

	run.Add(alice)
	run.Add(bob)

	if !run.HasRows() {
		t.Fatal("expected run to have rows")
	}
	if len(run.Profiles) != 1 {
		t.Errorf("expected 1 profile, got %d", len(run.Profiles))
	}

	summary := run.Summarize()
	if summary.Handles != 2 {
		t.Errorf("expected 2 handles, got %d", summary.Handles)
	}
	if summary.Rows != 1 {
		t.Errorf("expected 1 row, got %d", summary.Rows)
	}
	if summary.ByState[StatusNotFound] != 1 {
		t.Errorf("expected 1 not-found handle, got %d", summary.ByState[StatusNotFound])
	}
}

// TestStatusText tests that status labels survive a text round trip and
// that unknown labels are rejected.
func TestStatusText(t *testing.T) {
	t.Parallel()

	for s := StatusPending; s <= StatusFailed; s++ {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var got Status
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != s {
			t.Errorf("got %v, want %v", got, s)
		}
	}

	var s Status
	if err := s.UnmarshalText([]byte("gone")); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}
