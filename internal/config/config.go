package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/biomail/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "biomail"

	// DefaultInputFile is the handle list read when --input is not given.
	DefaultInputFile = "influencers.txt"

	// DefaultOutputFile is the result file written when --output is not given.
	DefaultOutputFile = "results.csv"

	// DefaultBaseURL is the platform root. Profile pages live at
	// <base>/<handle>/ and the login form at <base>/accounts/login/.
	DefaultBaseURL = "https://www.instagram.com"

	// DefaultUserAgent is a current desktop Chrome identity, shared by the
	// browser session and the website fetcher.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultLoginFormTimeout bounds the wait for the login form.
	DefaultLoginFormTimeout = 10 * time.Second

	// DefaultLoginLandingTimeout bounds the wait for the post-login landmark.
	DefaultLoginLandingTimeout = 15 * time.Second

	// DefaultProfileTimeout bounds the wait for a profile page header.
	// Expiry classifies the profile as not found.
	DefaultProfileTimeout = 10 * time.Second

	// DefaultWebsiteTimeout bounds a single external website request.
	DefaultWebsiteTimeout = 10 * time.Second

	// DefaultMaxBodySize caps the external website body that is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout bounds the embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Delay is an inclusive range for randomized pauses between interactive
// browser steps.
type Delay struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Default pause ranges between interactive steps.
var (
	// DefaultLoginDelay is the pause after the login form appears.
	DefaultLoginDelay = Delay{Min: 1 * time.Second, Max: 3 * time.Second}

	// DefaultTypingDelay is the pause after each credential field is typed.
	DefaultTypingDelay = Delay{Min: 1 * time.Second, Max: 2 * time.Second}

	// DefaultNavigationDelay is the pause after opening a profile page.
	DefaultNavigationDelay = Delay{Min: 2 * time.Second, Max: 4 * time.Second}
)

// Config holds every option of a scrape run.
// It is populated from CLI flags, optionally overlaid with a config file,
// and passed down explicitly.
type Config struct {
	// Source selects the run mode: bio-derived or website-derived emails.
	Source model.Source

	// InputFile is the handle list, one handle per line.
	InputFile string

	// OutputFile is where result rows are written at the end of the run.
	OutputFile string

	// Format forces the output format (csv, json, markdown).
	// When empty the format is inferred from OutputFile's extension.
	Format string

	// ConfigFilePath is an explicit config file path. When empty the
	// tool searches for .biomail in the current and home directory.
	ConfigFilePath string

	// Verbose enables debug logging.
	Verbose bool

	// Headless runs the browser without a window.
	Headless bool

	// BaseURL is the platform root URL.
	BaseURL string

	// UserAgent is sent by both the browser and the website fetcher.
	UserAgent string

	// LoginFormTimeout, LoginLandingTimeout and ProfileTimeout bound the
	// browser waits; WebsiteTimeout bounds each external HTTP request.
	LoginFormTimeout    time.Duration
	LoginLandingTimeout time.Duration
	ProfileTimeout      time.Duration
	WebsiteTimeout      time.Duration

	// LoginDelay, TypingDelay and NavigationDelay are the randomized
	// pauses between interactive steps.
	LoginDelay      Delay
	TypingDelay     Delay
	NavigationDelay Delay

	// ProxyAddress is an external SOCKS5 proxy ("host:port") used for
	// external website requests. Mutually exclusive with UseTor.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes external website
	// requests through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// CloudflareBypass wraps the website transport with browser-like
	// TLS settings and headers.
	CloudflareBypass bool

	// MaxBodySize caps the bytes read from an external website.
	MaxBodySize int64

	// SaveHistory stores every run in the history database under DBDir.
	SaveHistory bool

	// DBDir is the directory of the history database.
	DBDir string

	// Selectors are the per-field lookup chains for profile pages.
	Selectors Selectors
}

// NewConfig creates a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Source:              model.SourceProfileBio,
		InputFile:           DefaultInputFile,
		OutputFile:          DefaultOutputFile,
		Headless:            true,
		BaseURL:             DefaultBaseURL,
		UserAgent:           DefaultUserAgent,
		LoginFormTimeout:    DefaultLoginFormTimeout,
		LoginLandingTimeout: DefaultLoginLandingTimeout,
		ProfileTimeout:      DefaultProfileTimeout,
		WebsiteTimeout:      DefaultWebsiteTimeout,
		LoginDelay:          DefaultLoginDelay,
		TypingDelay:         DefaultTypingDelay,
		NavigationDelay:     DefaultNavigationDelay,
		TorStartupTimeout:   DefaultTorStartupTimeout,
		CloudflareBypass:    true,
		MaxBodySize:         DefaultMaxBodySize,
		SaveHistory:         true,
		DBDir:               XDGDataDir(),
		Selectors:           DefaultSelectors(),
	}
}

// XDGDataDir returns the data directory for biomail
// (~/.local/share/biomail on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory for biomail
// (~/.config/biomail on Linux).
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It runs once after flags and the config file are merged, before any
// browser or network activity.
func (c *Config) Validate() error {
	if c.Source != model.SourceProfileBio && c.Source != model.SourceExternalWebsite {
		return model.ErrUnknownSource
	}
	if c.InputFile == "" {
		return ErrNoInputFile
	}
	if c.OutputFile == "" {
		return ErrNoOutputFile
	}
	if !isKnownFormat(c.Format) {
		return ErrUnknownFormat
	}
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	for _, d := range []time.Duration{
		c.LoginFormTimeout, c.LoginLandingTimeout, c.ProfileTimeout, c.WebsiteTimeout,
	} {
		if d <= 0 {
			return ErrInvalidTimeout
		}
	}
	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTimeout
	}

	for _, d := range []Delay{c.LoginDelay, c.TypingDelay, c.NavigationDelay} {
		if d.Min < 0 || d.Max < d.Min {
			return ErrInvalidDelay
		}
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	return c.Selectors.Validate()
}

// isKnownFormat accepts the empty string (infer from extension) and the
// names understood by the report package, in any case.
func isKnownFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv", "json", "markdown", "md":
		return true
	default:
		return false
	}
}
