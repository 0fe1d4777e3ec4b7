package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/biomail/internal/instagram"
	"github.com/nao1215/biomail/internal/model"
	"github.com/nao1215/biomail/internal/website"
)

// TestNewDriver tests step selection per mode.
func TestNewDriver(t *testing.T) {
	t.Parallel()

	t.Run("profile bio mode", func(t *testing.T) {
		t.Parallel()

		d := NewDriver(model.SourceProfileBio, &fakeProfiles{}, nil, WithDriverLogger(discardLogger))
		if diff := cmp.Diff([]string{"profile", "bio", "verify"}, d.StepNames()); diff != "" {
			t.Errorf("steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("external website mode", func(t *testing.T) {
		t.Parallel()

		d := NewDriver(model.SourceExternalWebsite, &fakeProfiles{}, &fakeSites{}, WithDriverLogger(discardLogger))
		if diff := cmp.Diff([]string{"profile", "website", "verify"}, d.StepNames()); diff != "" {
			t.Errorf("steps mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestDriverRun tests end-to-end runs over fake fetchers.
func TestDriverRun(t *testing.T) {
	t.Parallel()

	t.Run("bio mode emits rows for found profiles and skips missing ones", func(t *testing.T) {
		t.Parallel()

		profiles := &fakeProfiles{profiles: map[string]*model.Profile{
			"alice": {Handle: "alice", Bio: "Email me: alice@example.com for collabs"},
		}}
		d := NewDriver(model.SourceProfileBio, profiles, nil, WithDriverLogger(discardLogger))

		run, err := d.Run(context.Background(), []string{"alice", "bob"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []model.ResultRow{{Handle: "alice", Email: "alice@example.com", Source: model.SourceProfileBio}}
		if diff := cmp.Diff(want, run.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
		wantOutcomes := []model.HandleOutcome{
			{Handle: "alice", Status: model.StatusEmailsFound, Emails: 1},
			{Handle: "bob", Status: model.StatusNotFound, Reason: "profile not found"},
		}
		if diff := cmp.Diff(wantOutcomes, run.Outcomes); diff != "" {
			t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
		}
		if run.Interrupted {
			t.Error("expected complete run")
		}
		if run.FinishedAt.IsZero() {
			t.Error("expected finish time to be set")
		}
	})

	t.Run("website mode emits rows from the linked site", func(t *testing.T) {
		t.Parallel()

		profiles := &fakeProfiles{profiles: map[string]*model.Profile{
			"alice": {Handle: "alice", Bio: "bio@alice.biz", Website: "http://alice.biz"},
		}}
		sites := &fakeSites{pages: map[string]*website.Page{
			"http://alice.biz": {Text: "Contact: hello@alice.biz"},
		}}
		d := NewDriver(model.SourceExternalWebsite, profiles, sites, WithDriverLogger(discardLogger))

		run, err := d.Run(context.Background(), []string{"alice"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []model.ResultRow{{Handle: "alice", Email: "hello@alice.biz", Source: model.SourceExternalWebsite}}
		if diff := cmp.Diff(want, run.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unreachable website does not stop the run", func(t *testing.T) {
		t.Parallel()

		profiles := &fakeProfiles{profiles: map[string]*model.Profile{
			"alice": {Handle: "alice", Website: "http://down.example"},
			"carol": {Handle: "carol", Website: "https://carol.example.org"},
			"dave":  {Handle: "dave"},
		}}
		sites := &fakeSites{pages: map[string]*website.Page{
			"https://carol.example.org": {Text: "booking: carol@example.org"},
		}}
		d := NewDriver(model.SourceExternalWebsite, profiles, sites, WithDriverLogger(discardLogger))

		run, err := d.Run(context.Background(), []string{"alice", "carol", "dave"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []model.ResultRow{{Handle: "carol", Email: "carol@example.org", Source: model.SourceExternalWebsite}}
		if diff := cmp.Diff(want, run.Rows); diff != "" {
			t.Errorf("rows mismatch (-want +got):\n%s", diff)
		}
		summary := run.Summarize()
		if summary.ByState[model.StatusUnreachable] != 1 || summary.ByState[model.StatusNoWebsite] != 1 {
			t.Errorf("unexpected summary %+v", summary.ByState)
		}
	})

	t.Run("rows keep handle order then discovery order", func(t *testing.T) {
		t.Parallel()

		profiles := &fakeProfiles{profiles: map[string]*model.Profile{
			"zed":  {Handle: "zed", Bio: "second@zed.example.com then first@zed.example.com"},
			"anna": {Handle: "anna", Bio: "reach anna@anna.example.com"},
		}}
		d := NewDriver(model.SourceProfileBio, profiles, nil, WithDriverLogger(discardLogger))

		run, err := d.Run(context.Background(), []string{"zed", "anna"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got []string
		for _, r := range run.Rows {
			got = append(got, r.Handle+":"+r.Email)
		}
		want := []string{"zed:second@zed.example.com", "zed:first@zed.example.com", "anna:anna@anna.example.com"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("row order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("session loss aborts with partial rows", func(t *testing.T) {
		t.Parallel()

		profiles := &fakeProfiles{
			profiles: map[string]*model.Profile{
				"alice": {Handle: "alice", Bio: "Email me: alice@example.com for collabs"},
				"carol": {Handle: "carol", Bio: "carol@example.com"},
			},
			errs: map[string]error{
				"bob": fmt.Errorf("%w: websocket closed", instagram.ErrSessionUnavailable),
			},
		}
		d := NewDriver(model.SourceProfileBio, profiles, nil, WithDriverLogger(discardLogger))

		run, err := d.Run(context.Background(), []string{"alice", "bob", "carol"})
		if !errors.Is(err, instagram.ErrSessionUnavailable) {
			t.Fatalf("expected ErrSessionUnavailable, got %v", err)
		}
		if run == nil {
			t.Fatal("expected partial run")
		}
		if !run.Interrupted {
			t.Error("expected run to be marked interrupted")
		}
		if len(run.Rows) != 1 || run.Rows[0].Handle != "alice" {
			t.Errorf("expected alice's row only, got %v", run.Rows)
		}
		if diff := cmp.Diff([]string{"alice", "bob"}, profiles.calls); diff != "" {
			t.Errorf("expected carol not to be fetched (-want +got):\n%s", diff)
		}
		if last := run.Outcomes[len(run.Outcomes)-1]; last.Status != model.StatusFailed {
			t.Errorf("expected failed outcome for bob, got %v", last.Status)
		}
	})

	t.Run("cancelled context stops between handles", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		profiles := &fakeProfiles{}
		d := NewDriver(model.SourceProfileBio, profiles, nil, WithDriverLogger(discardLogger))

		run, err := d.Run(ctx, []string{"alice", "bob"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if !run.Interrupted || len(profiles.calls) != 0 {
			t.Errorf("expected interrupted run without fetches, got interrupted=%v calls=%v", run.Interrupted, profiles.calls)
		}
	})

	t.Run("empty input yields an empty run", func(t *testing.T) {
		t.Parallel()

		d := NewDriver(model.SourceProfileBio, &fakeProfiles{}, nil, WithDriverLogger(discardLogger))
		run, err := d.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.HasRows() {
			t.Error("expected no rows")
		}
	})
}
