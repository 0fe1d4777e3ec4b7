package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSource is returned when a source name cannot be parsed.
var ErrUnknownSource = errors.New("unknown source: use profile-bio or external-website")

// Source identifies where a verified email was discovered.
// It doubles as the run mode selected on the command line.
type Source int

const (
	// SourceProfileBio means the email came from the profile bio text or
	// from a mailto link rendered on the profile page.
	SourceProfileBio Source = iota

	// SourceExternalWebsite means the email came from the visible text of
	// the website linked from the profile.
	SourceExternalWebsite
)

// String returns the canonical name used in output files.
func (s Source) String() string {
	switch s {
	case SourceProfileBio:
		return "profile-bio"
	case SourceExternalWebsite:
		return "external-website"
	default:
		return "unknown"
	}
}

// ParseSource converts a user supplied name into a Source.
// Besides the canonical names it accepts the short aliases used by
// older versions of the tool ("instagram", "bio", "website", "external").
func ParseSource(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "profile-bio", "bio", "instagram", "profile":
		return SourceProfileBio, nil
	case "external-website", "website", "external", "site":
		return SourceExternalWebsite, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

// MarshalText implements encoding.TextMarshaler so that JSON and YAML
// output carry the canonical name instead of the integer value.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
