package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// defaultElementTimeout bounds lookups for elements that should already
// be on the page (form fields, buttons).
const defaultElementTimeout = 5 * time.Second

// Rod is a Session backed by a Chrome instance.
type Rod struct {
	headless  bool
	userAgent string
	logger    *slog.Logger

	mu       sync.Mutex
	closed   bool
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Option configures a Rod session.
type Option func(*Rod)

// WithHeadless controls whether Chrome runs without a window.
func WithHeadless(headless bool) Option {
	return func(r *Rod) {
		r.headless = headless
	}
}

// WithUserAgent overrides the user agent of the tab.
func WithUserAgent(ua string) Option {
	return func(r *Rod) {
		r.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rod) {
		r.logger = logger
	}
}

// Launch starts Chrome, connects to it and opens a stealth tab.
// The returned session must be closed by the caller.
func Launch(ctx context.Context, opts ...Option) (*Rod, error) {
	r := &Rod{headless: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	l := launcher.New().
		Context(ctx).
		Headless(r.headless).
		Set("disable-blink-features", "AutomationControlled")
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	r.launcher = l
	r.logger.Debug("launched local chrome", "headless", r.headless)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		r.cleanup()
		return nil, fmt.Errorf("%w: connect: %w", ErrLaunch, err)
	}
	r.browser = b

	page, err := stealth.Page(b)
	if err != nil {
		r.cleanup()
		return nil, fmt.Errorf("%w: open tab: %w", ErrLaunch, err)
	}
	r.page = page

	if r.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
			r.cleanup()
			return nil, fmt.Errorf("%w: set user agent: %w", ErrLaunch, err)
		}
	}

	return r, nil
}

// current returns the page or ErrClosed.
func (r *Rod) current(ctx context.Context) (*rod.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.page == nil {
		return nil, ErrClosed
	}
	return r.page.Context(ctx), nil
}

// Navigate implements Session.
func (r *Rod) Navigate(ctx context.Context, url string) error {
	page, err := r.current(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// WaitFor implements Session.
func (r *Rod) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	page, err := r.current(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Timeout(timeout).Element(selector); err != nil {
		return classify(ctx, selector, err)
	}
	return nil
}

// Has implements Session.
func (r *Rod) Has(ctx context.Context, selector string) (bool, error) {
	page, err := r.current(ctx)
	if err != nil {
		return false, err
	}
	found, _, err := page.Has(selector)
	if err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	return found, nil
}

// Type implements Session.
func (r *Rod) Type(ctx context.Context, selector, text string) error {
	el, err := r.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into %q: %w", selector, err)
	}
	return nil
}

// Click implements Session.
func (r *Rod) Click(ctx context.Context, selector string) error {
	el, err := r.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

// HTML implements Session.
func (r *Rod) HTML(ctx context.Context) (string, error) {
	page, err := r.current(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	return html, nil
}

// Close implements Session. It is safe to call more than once.
func (r *Rod) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.cleanup()
	r.logger.Debug("browser session closed")
	return nil
}

func (r *Rod) element(ctx context.Context, selector string) (*rod.Element, error) {
	page, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	el, err := page.Timeout(defaultElementTimeout).Element(selector)
	if err != nil {
		return nil, classify(ctx, selector, err)
	}
	return el, nil
}

func (r *Rod) cleanup() {
	if r.page != nil {
		_ = r.page.Close()
		r.page = nil
	}
	if r.browser != nil {
		_ = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Cleanup()
		r.launcher = nil
	}
}

// classify maps an element lookup error to ErrTimeout when the lookup's own
// deadline expired while the caller's context is still alive.
func classify(ctx context.Context, selector string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return fmt.Errorf("%w: %q", ErrTimeout, selector)
	}
	return fmt.Errorf("find %q: %w", selector, err)
}
