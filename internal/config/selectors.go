package config

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// SelectorSpec describes one lookup strategy of a field's fallback chain.
type SelectorSpec struct {
	// CSS selects candidate elements in the rendered page.
	CSS string `yaml:"css"`

	// Attr reads the named attribute instead of the element text.
	Attr string `yaml:"attr,omitempty"`

	// MinLength rejects texts with fewer runes than this.
	MinLength int `yaml:"min_length,omitempty"`

	// LinkText accepts only texts that look like a bare domain
	// (contain a dot, do not start with '@').
	LinkText bool `yaml:"link_text,omitempty"`
}

// Selectors holds the lookup chains for every profile field and the fixed
// selectors of the login flow. Markup on the platform changes often, so
// each field is an ordered chain: the first strategy that yields a
// plausible value wins.
type Selectors struct {
	Bio         []SelectorSpec `yaml:"bio,omitempty"`
	Website     []SelectorSpec `yaml:"website,omitempty"`
	DisplayName []SelectorSpec `yaml:"display_name,omitempty"`
	Category    []SelectorSpec `yaml:"category,omitempty"`

	// Stats selects the number spans of the followers/following/posts
	// counters; the label is read from the grandparent element.
	Stats string `yaml:"stats,omitempty"`

	// MailLinks selects explicit mail links.
	MailLinks string `yaml:"mail_links,omitempty"`

	// ProfileReady is the element whose presence marks a rendered profile.
	ProfileReady string `yaml:"profile_ready,omitempty"`

	// Login form and landing page.
	LoginUsername string `yaml:"login_username,omitempty"`
	LoginPassword string `yaml:"login_password,omitempty"`
	LoginSubmit   string `yaml:"login_submit,omitempty"`
	LoginLanding  string `yaml:"login_landing,omitempty"`
}

// bioMinLength is the shortest bio text that is not treated as a stray
// label match.
const bioMinLength = 11

// DefaultSelectors returns the chains known to work against the current
// profile markup.
func DefaultSelectors() Selectors {
	return Selectors{
		Bio: []SelectorSpec{
			{CSS: "span[class*='_ap3a'][class*='_aaco'][class*='_aacu'][class*='_aacx'][class*='_aad7'][class*='_aade']", MinLength: bioMinLength},
			{CSS: "div[class*='x7a106z'] span[dir='auto']", MinLength: bioMinLength},
			{CSS: "header section[class*='xc3tme8'] div span[dir='auto']", MinLength: bioMinLength},
			{CSS: "section[class*='xc3tme8'][class*='x1xdureb'][class*='x18wylqe'][class*='x1vnunu7']", MinLength: bioMinLength},
		},
		Website: []SelectorSpec{
			{CSS: `a[rel="me nofollow noopener noreferrer"]`, Attr: "href"},
			{CSS: `a[href^="http"]:not([href*="instagram.com"])`, Attr: "href"},
			{CSS: `section[class*="xc3tme8"] a:not([href^="/"])`, Attr: "href"},
			{CSS: `button[class*="_aswp"] + a`, Attr: "href"},
			{CSS: `button svg[aria-label="Link icon"] + div`, LinkText: true},
		},
		DisplayName: []SelectorSpec{
			{CSS: "span[class*='xvs91rp'][class*='x1s688f']"},
			{CSS: "header section h2"},
		},
		Category: []SelectorSpec{
			{CSS: "div[class*='_ap3a'][class*='_aaco'][class*='_aacu'][class*='_aacy']"},
		},
		Stats:         "span[class*='x5n08af'][class*='x1s688f'] span",
		MailLinks:     `a[href^="mailto:"]`,
		ProfileReady:  "header",
		LoginUsername: `input[name="username"]`,
		LoginPassword: `input[name="password"]`,
		LoginSubmit:   `button[type="submit"]`,
		LoginLanding:  `[aria-label*="Home"]`,
	}
}

// Merge returns s with every non-empty field of override applied.
// Chains are replaced as a whole, not appended to.
func (s Selectors) Merge(override Selectors) Selectors {
	result := s
	if len(override.Bio) > 0 {
		result.Bio = override.Bio
	}
	if len(override.Website) > 0 {
		result.Website = override.Website
	}
	if len(override.DisplayName) > 0 {
		result.DisplayName = override.DisplayName
	}
	if len(override.Category) > 0 {
		result.Category = override.Category
	}
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&result.Stats, override.Stats},
		{&result.MailLinks, override.MailLinks},
		{&result.ProfileReady, override.ProfileReady},
		{&result.LoginUsername, override.LoginUsername},
		{&result.LoginPassword, override.LoginPassword},
		{&result.LoginSubmit, override.LoginSubmit},
		{&result.LoginLanding, override.LoginLanding},
	} {
		if pair.src != "" {
			*pair.dst = pair.src
		}
	}
	return result
}

// Validate compiles every selector so that a typo in the config file is
// reported at start-up instead of silently matching nothing.
func (s Selectors) Validate() error {
	chains := []struct {
		name  string
		specs []SelectorSpec
	}{
		{"bio", s.Bio},
		{"website", s.Website},
		{"display_name", s.DisplayName},
		{"category", s.Category},
	}
	for _, chain := range chains {
		if len(chain.specs) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptySelectorChain, chain.name)
		}
		for i, spec := range chain.specs {
			if err := compile(spec.CSS); err != nil {
				return fmt.Errorf("%s[%d]: %w", chain.name, i, err)
			}
		}
	}

	singles := []struct {
		name string
		css  string
	}{
		{"stats", s.Stats},
		{"mail_links", s.MailLinks},
		{"profile_ready", s.ProfileReady},
		{"login_username", s.LoginUsername},
		{"login_password", s.LoginPassword},
		{"login_submit", s.LoginSubmit},
		{"login_landing", s.LoginLanding},
	}
	for _, single := range singles {
		if err := compile(single.css); err != nil {
			return fmt.Errorf("%s: %w", single.name, err)
		}
	}
	return nil
}

func compile(css string) error {
	if css == "" {
		return fmt.Errorf("%w: empty selector", ErrInvalidSelector)
	}
	if _, err := cascadia.Compile(css); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSelector, css, err)
	}
	return nil
}
