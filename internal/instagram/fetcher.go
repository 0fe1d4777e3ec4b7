package instagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/biomail/internal/browser"
	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/model"
)

// Fetcher logs into the platform and reads profile pages.
// It owns the session passed to NewFetcher and closes it on login failure
// and on Close.
type Fetcher struct {
	session   browser.Session
	baseURL   string
	selectors config.Selectors
	parser    *Parser
	pause     PauseFunc
	logger    *slog.Logger

	loginFormTimeout    time.Duration
	loginLandingTimeout time.Duration
	profileTimeout      time.Duration

	loginDelay      config.Delay
	typingDelay     config.Delay
	navigationDelay config.Delay

	loggedIn bool
	closed   bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithBaseURL overrides the platform root.
func WithBaseURL(base string) Option {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(base, "/")
	}
}

// WithSelectors overrides the selector chains.
func WithSelectors(sel config.Selectors) Option {
	return func(f *Fetcher) {
		f.selectors = sel
	}
}

// WithPause replaces the randomized pause between interactive steps.
func WithPause(pause PauseFunc) Option {
	return func(f *Fetcher) {
		f.pause = pause
	}
}

// WithTimeouts sets the login form, login landing and profile waits.
func WithTimeouts(loginForm, loginLanding, profile time.Duration) Option {
	return func(f *Fetcher) {
		f.loginFormTimeout = loginForm
		f.loginLandingTimeout = loginLanding
		f.profileTimeout = profile
	}
}

// WithDelays sets the pause ranges used around login and navigation.
func WithDelays(login, typing, navigation config.Delay) Option {
	return func(f *Fetcher) {
		f.loginDelay = login
		f.typingDelay = typing
		f.navigationDelay = navigation
	}
}

// NewFetcher creates a Fetcher over session.
func NewFetcher(session browser.Session, opts ...Option) *Fetcher {
	f := &Fetcher{
		session:             session,
		baseURL:             config.DefaultBaseURL,
		selectors:           config.DefaultSelectors(),
		pause:               RandomPause,
		loginFormTimeout:    config.DefaultLoginFormTimeout,
		loginLandingTimeout: config.DefaultLoginLandingTimeout,
		profileTimeout:      config.DefaultProfileTimeout,
		loginDelay:          config.DefaultLoginDelay,
		typingDelay:         config.DefaultTypingDelay,
		navigationDelay:     config.DefaultNavigationDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.parser = NewParser(f.selectors, f.logger)
	return f
}

// LoggedIn reports whether Login succeeded and the session is still open.
func (f *Fetcher) LoggedIn() bool {
	return f.loggedIn && !f.closed
}

// Login submits creds through the login form. Calling it again after a
// successful login is a no-op. Any failure closes the session; the error
// then wraps ErrSessionUnavailable and every later call fails the same way.
func (f *Fetcher) Login(ctx context.Context, creds config.Credentials) error {
	if f.closed {
		return ErrSessionUnavailable
	}
	if f.loggedIn {
		f.logger.Debug("already logged in")
		return nil
	}

	f.logger.Info("logging in", "account", creds)
	if err := f.login(ctx, creds); err != nil {
		f.logger.Error("login failed", "error", err)
		_ = f.Close()
		return fmt.Errorf("%w: login: %w", ErrSessionUnavailable, err)
	}

	f.loggedIn = true
	f.logger.Info("logged in")
	return nil
}

func (f *Fetcher) login(ctx context.Context, creds config.Credentials) error {
	sel := f.selectors
	if err := f.session.Navigate(ctx, f.baseURL+"/accounts/login/"); err != nil {
		return err
	}
	if err := f.session.WaitFor(ctx, sel.LoginUsername, f.loginFormTimeout); err != nil {
		return err
	}
	found, err := f.session.Has(ctx, sel.LoginPassword)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrLoginFormIncomplete, sel.LoginPassword)
	}

	if err := f.pause(ctx, f.loginDelay); err != nil {
		return err
	}
	if err := f.session.Type(ctx, sel.LoginUsername, creds.Username); err != nil {
		return err
	}
	if err := f.pause(ctx, f.typingDelay); err != nil {
		return err
	}
	if err := f.session.Type(ctx, sel.LoginPassword, creds.Password); err != nil {
		return err
	}
	if err := f.pause(ctx, f.typingDelay); err != nil {
		return err
	}
	if err := f.session.Click(ctx, sel.LoginSubmit); err != nil {
		return err
	}
	return f.session.WaitFor(ctx, sel.LoginLanding, f.loginLandingTimeout)
}

// ProfileURL returns the page address of handle.
func (f *Fetcher) ProfileURL(handle string) string {
	return f.baseURL + "/" + url.PathEscape(handle) + "/"
}

// FetchProfile opens the profile page of handle and extracts a snapshot.
// A page that does not render within the profile timeout yields ErrNotFound.
// Browser failures yield ErrSessionUnavailable.
func (f *Fetcher) FetchProfile(ctx context.Context, handle string) (*model.Profile, error) {
	if !f.LoggedIn() {
		return nil, ErrSessionUnavailable
	}

	pageURL := f.ProfileURL(handle)
	f.logger.Info("fetching profile", "handle", handle)

	if err := f.session.Navigate(ctx, pageURL); err != nil {
		return nil, f.sessionError(ctx, "navigate", err)
	}
	if err := f.pause(ctx, f.navigationDelay); err != nil {
		return nil, err
	}

	if err := f.session.WaitFor(ctx, f.selectors.ProfileReady, f.profileTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, handle)
		}
		return nil, f.sessionError(ctx, "wait for profile", err)
	}

	html, err := f.session.HTML(ctx)
	if err != nil {
		return nil, f.sessionError(ctx, "read profile", err)
	}

	profile, err := f.parser.ParseHTML(strings.NewReader(html), handle, pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", handle, err)
	}

	f.logger.Debug("profile snapshot",
		"handle", handle,
		"has_bio", profile.HasBio(),
		"has_website", profile.HasWebsite(),
		"mail_links", len(profile.MailLinks),
	)
	return profile, nil
}

// sessionError passes context errors through and classifies everything
// else as a lost session.
func (f *Fetcher) sessionError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %s: %w", ErrSessionUnavailable, op, err)
}

// Close closes the underlying session. It is safe to call more than once.
func (f *Fetcher) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.loggedIn = false
	f.logger.Info("closing browser session")
	return f.session.Close()
}
