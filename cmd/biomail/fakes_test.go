package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/biomail/internal/browser"
	"github.com/nao1215/biomail/internal/config"
)

// fakeSession serves canned pages. Pages that are not registered never
// render their profile header, which the fetcher reports as not found.
type fakeSession struct {
	mu        sync.Mutex
	pages     map[string]string
	current   string
	loginFail bool
	closed    bool
	visited   []string
}

func newFakeSession(pages map[string]string) *fakeSession {
	return &fakeSession{pages: pages}
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return browser.ErrClosed
	}
	s.current = url
	s.visited = append(s.visited, url)
	return nil
}

func (s *fakeSession) WaitFor(_ context.Context, selector string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.HasSuffix(s.current, "/accounts/login/") {
		if s.loginFail && selector == config.DefaultSelectors().LoginLanding {
			return browser.ErrTimeout
		}
		return nil
	}
	if _, ok := s.pages[s.current]; !ok {
		return browser.ErrTimeout
	}
	return nil
}

func (s *fakeSession) Has(context.Context, string) (bool, error) { return true, nil }

func (s *fakeSession) Type(context.Context, string, string) error { return nil }

func (s *fakeSession) Click(context.Context, string) error { return nil }

func (s *fakeSession) HTML(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[s.current], nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// profileHTML renders a minimal profile page matched by the default
// selector chains.
func profileHTML(bio, website string) string {
	var b strings.Builder
	b.WriteString("<html><body><header><section>")
	if bio != "" {
		fmt.Fprintf(&b, `<div class="x7a106z"><span dir="auto">%s</span></div>`, bio)
	}
	if website != "" {
		fmt.Fprintf(&b, `<a href="%s">site</a>`, website)
	}
	b.WriteString("</section></header></body></html>")
	return b.String()
}

// profileURL is the address the fetcher visits for handle.
func profileURL(handle string) string {
	return config.DefaultBaseURL + "/" + handle + "/"
}

// fakeDeps wires session and fixed credentials, and counts launches.
type fakeDeps struct {
	session  browser.Session
	launches int
	credErr  error
}

func (f *fakeDeps) deps() runtimeDeps {
	return runtimeDeps{
		launch: func(context.Context, *config.Config, *slog.Logger) (browser.Session, error) {
			f.launches++
			if f.session == nil {
				return nil, errors.New("no browser")
			}
			return f.session, nil
		},
		credentials: func() (config.Credentials, error) {
			if f.credErr != nil {
				return config.Credentials{}, f.credErr
			}
			return config.Credentials{Username: "tester", Password: "secret"}, nil
		},
	}
}

// testConfig returns a config without delays that writes into a temp dir.
func testConfig(t *testing.T, handles ...string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.InputFile = filepath.Join(dir, "handles.txt")
	cfg.OutputFile = filepath.Join(dir, "results.csv")
	cfg.DBDir = filepath.Join(dir, "db")
	cfg.LoginDelay = config.Delay{}
	cfg.TypingDelay = config.Delay{}
	cfg.NavigationDelay = config.Delay{}
	cfg.CloudflareBypass = false

	if err := os.WriteFile(cfg.InputFile, []byte(strings.Join(handles, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// syncBuffer is a bytes.Buffer safe for concurrent log writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// cancelOnNavigate cancels the run when the fetcher opens target.
type cancelOnNavigate struct {
	*fakeSession
	target string
	cancel context.CancelFunc
}

func (s *cancelOnNavigate) Navigate(ctx context.Context, url string) error {
	if url == s.target {
		s.cancel()
	}
	return s.fakeSession.Navigate(ctx, url)
}

func newTestLogger(w *syncBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
