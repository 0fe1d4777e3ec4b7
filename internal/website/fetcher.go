package website

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"

	"github.com/nao1215/biomail/internal/config"
	"github.com/nao1215/biomail/internal/tor"
)

// maxRedirects bounds redirect chains such as link shorteners.
const maxRedirects = 10

// Page is a fetched website.
type Page struct {
	// URL is the address that was requested.
	URL string

	// FinalURL is the address after redirects.
	FinalURL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Text is the visible text of the page.
	Text string

	// MailLinks holds the recipients of mailto: links on the page.
	MailLinks []string
}

// Fetcher retrieves external websites.
type Fetcher struct {
	client      *resty.Client
	proxy       *tor.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	bypass      bool
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithTimeout bounds a single fetch, including redirects and body read.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps the number of body bytes read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithProxy routes requests through a SOCKS5 proxy.
func WithProxy(c *tor.Client) Option {
	return func(f *Fetcher) {
		f.proxy = c
	}
}

// WithCloudflareBypass wraps the transport with browser-like TLS and
// header settings. It is enabled by default.
func WithCloudflareBypass(enabled bool) Option {
	return func(f *Fetcher) {
		f.bypass = enabled
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     config.DefaultWebsiteTimeout,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		bypass:      true,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}

	var transport http.RoundTripper
	if f.proxy != nil {
		transport = f.proxy.Transport()
	} else {
		transport = http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // stdlib default
	}
	if f.bypass {
		transport = cloudflarebp.AddCloudFlareByPass(transport)
	}

	f.client = resty.New().
		SetTransport(transport).
		SetTimeout(f.timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", f.userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")

	return f
}

// FetchText returns the visible text of the page at rawURL.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	page, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return page.Text, nil
}

// Fetch retrieves rawURL and reduces it to text. Every failure wraps
// ErrUnreachable.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	f.logger.Debug("fetching website", "url", rawURL)
	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if resp != nil && resp.RawBody() != nil {
		defer resp.RawBody().Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, rawURL, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: status %d", ErrUnreachable, rawURL, resp.StatusCode())
	}

	page := &Page{
		URL:        rawURL,
		FinalURL:   rawURL,
		StatusCode: resp.StatusCode(),
	}
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		page.FinalURL = raw.Request.URL.String()
	}

	if !isTextual(resp.Header().Get("Content-Type")) {
		f.logger.Debug("skipping non-text website", "url", rawURL, "content_type", resp.Header().Get("Content-Type"))
		return page, nil
	}

	content, err := ExtractContent(io.LimitReader(resp.RawBody(), f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, rawURL, err)
	}
	page.Text = content.Text
	page.MailLinks = content.MailLinks
	return page, nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// isTextual reports whether a Content-Type can hold readable text.
// A missing header is treated as HTML.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return strings.HasPrefix(mediaType, "text/") ||
		strings.Contains(mediaType, "html") ||
		strings.Contains(mediaType, "xml")
}
