package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".biomail"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .biomail configuration file.
// Every field is optional; zero values keep the built-in defaults.
type File struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	UserAgent string `yaml:"user_agent,omitempty"`

	// Headless is a pointer so that "headless: false" can be told apart
	// from an absent key.
	Headless *bool `yaml:"headless,omitempty"`

	Timeouts struct {
		LoginForm    time.Duration `yaml:"login_form,omitempty"`
		LoginLanding time.Duration `yaml:"login_landing,omitempty"`
		Profile      time.Duration `yaml:"profile,omitempty"`
		Website      time.Duration `yaml:"website,omitempty"`
	} `yaml:"timeouts,omitempty"`

	Delays struct {
		Login      *Delay `yaml:"login,omitempty"`
		Typing     *Delay `yaml:"typing,omitempty"`
		Navigation *Delay `yaml:"navigation,omitempty"`
	} `yaml:"delays,omitempty"`

	Website struct {
		Proxy            string `yaml:"proxy,omitempty"`
		CloudflareBypass *bool  `yaml:"cloudflare_bypass,omitempty"`
		MaxBodySize      int64  `yaml:"max_body_size,omitempty"`
	} `yaml:"website,omitempty"`

	Selectors Selectors `yaml:"selectors,omitempty"`
}

// LoadConfigFile reads a YAML configuration file.
// A missing file yields ErrConfigNotFound so that callers can decide
// whether absence is an error (explicit --config) or not (search).
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in this order:
//  1. configPath, when given
//  2. .biomail in the current directory
//  3. .biomail in the user's home directory
//  4. config.yaml in the XDG config directory
//
// It returns an empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Apply overlays the non-zero values of f onto c.
// Flags the user set explicitly are applied after Apply by the caller.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Headless != nil {
		c.Headless = *f.Headless
	}

	if f.Timeouts.LoginForm > 0 {
		c.LoginFormTimeout = f.Timeouts.LoginForm
	}
	if f.Timeouts.LoginLanding > 0 {
		c.LoginLandingTimeout = f.Timeouts.LoginLanding
	}
	if f.Timeouts.Profile > 0 {
		c.ProfileTimeout = f.Timeouts.Profile
	}
	if f.Timeouts.Website > 0 {
		c.WebsiteTimeout = f.Timeouts.Website
	}

	if f.Delays.Login != nil {
		c.LoginDelay = *f.Delays.Login
	}
	if f.Delays.Typing != nil {
		c.TypingDelay = *f.Delays.Typing
	}
	if f.Delays.Navigation != nil {
		c.NavigationDelay = *f.Delays.Navigation
	}

	if f.Website.Proxy != "" {
		c.ProxyAddress = f.Website.Proxy
	}
	if f.Website.CloudflareBypass != nil {
		c.CloudflareBypass = *f.Website.CloudflareBypass
	}
	if f.Website.MaxBodySize > 0 {
		c.MaxBodySize = f.Website.MaxBodySize
	}

	c.Selectors = c.Selectors.Merge(f.Selectors)
}
