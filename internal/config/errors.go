package config

import "errors"

// Configuration errors returned by Validate, LoadCredentials and the
// config file loader. Callers classify them with errors.Is.
var (
	// ErrMissingCredentials is returned when the account identifier or
	// secret is not set. It is checked before any network activity.
	ErrMissingCredentials = errors.New("missing credentials: set INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD (environment or .env)")

	// ErrNoInputFile is returned when no handle list path is configured.
	ErrNoInputFile = errors.New("no input file specified")

	// ErrNoOutputFile is returned when no result path is configured.
	ErrNoOutputFile = errors.New("no output file specified")

	// ErrUnknownFormat is returned for an unsupported --format value.
	ErrUnknownFormat = errors.New("unknown output format: use csv, json or markdown")

	// ErrNoBaseURL is returned when the platform base URL is empty.
	ErrNoBaseURL = errors.New("base URL must not be empty")

	// ErrInvalidTimeout is returned when a timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when a delay range is negative or inverted.
	ErrInvalidDelay = errors.New("invalid delay: min must be non-negative and not exceed max")

	// ErrConflictingProxy is returned when both --proxy and --tor are set.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidMaxBodySize is returned when the body size cap is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidSelector is returned when a configured CSS selector does
	// not compile.
	ErrInvalidSelector = errors.New("invalid CSS selector")

	// ErrEmptySelectorChain is returned when a required field has no
	// lookup strategy at all.
	ErrEmptySelectorChain = errors.New("selector chain must not be empty")
)
