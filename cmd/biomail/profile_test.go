package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/model"
)

// TestFetchProfiles tests reading snapshots through a fake browser.
func TestFetchProfiles(t *testing.T) {
	t.Parallel()

	t.Run("skips missing profiles", func(t *testing.T) {
		t.Parallel()

		session := newFakeSession(map[string]string{
			profileURL("alice"): profileHTML("Bookings: alice@example.com", "https://alice.biz"),
		})
		fake := &fakeDeps{session: session}
		cfg := testConfig(t)
		var logs syncBuffer

		profiles, err := fetchProfiles(context.Background(), cfg, fake.deps(), []string{"ghost", "alice"}, newTestLogger(&logs))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(profiles) != 1 {
			t.Fatalf("expected one profile, got %d", len(profiles))
		}
		got := profiles[0]
		if got.Handle != "alice" || got.Bio != "Bookings: alice@example.com" || got.Website != "https://alice.biz" {
			t.Errorf("unexpected profile: %+v", got)
		}
		if diff := cmp.Diff([]string{"alice@example.com"}, got.Emails); diff != "" {
			t.Errorf("bio emails mismatch (-want +got):\n%s", diff)
		}
		if !session.isClosed() {
			t.Error("session should be closed")
		}
	})

	t.Run("missing credentials stop before the browser starts", func(t *testing.T) {
		t.Parallel()

		fake := &fakeDeps{session: newFakeSession(nil), credErr: config.ErrMissingCredentials}
		var logs syncBuffer

		_, err := fetchProfiles(context.Background(), testConfig(t), fake.deps(), []string{"alice"}, newTestLogger(&logs))
		if !errors.Is(err, config.ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
		if fake.launches != 0 {
			t.Errorf("browser launched %d time(s)", fake.launches)
		}
	})
}

// TestPrintProfiles tests both output styles.
func TestPrintProfiles(t *testing.T) {
	t.Parallel()

	profiles := []model.Profile{{
		Handle:    "alice",
		URL:       "https://www.instagram.com/alice/",
		Bio:       "hello, write to press@alice.biz",
		Followers: "1.2M",
		MailLinks: []string{"alice@example.com"},
		Emails:    []string{"press@alice.biz"},
	}}

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := printProfiles(&buf, profiles, false); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		for _, want := range []string{"@alice", "1.2M", "alice@example.com", "Bio emails", "press@alice.biz", "-"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := printProfiles(&buf, profiles, true); err != nil {
			t.Fatal(err)
		}
		var got []model.Profile
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if diff := cmp.Diff(profiles, got); diff != "" {
			t.Errorf("profiles mismatch (-want +got):\n%s", diff)
		}
	})
}
