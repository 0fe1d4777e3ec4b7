package email

import "errors"

// Validation errors returned by Validate.
// NormalizeAndVerify never returns them; it only logs and drops.
var (
	// ErrEmpty is returned for an empty candidate.
	ErrEmpty = errors.New("empty address")

	// ErrAtSign is returned when the address does not contain exactly one '@'.
	ErrAtSign = errors.New("address must contain exactly one @")

	// ErrTooLong is returned when the address exceeds 254 characters.
	ErrTooLong = errors.New("address exceeds 254 characters")

	// ErrInvalidLocalPart is returned for an empty, oversized or malformed local part.
	ErrInvalidLocalPart = errors.New("invalid local part")

	// ErrInvalidDomain is returned when the domain is not a valid host name.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrInvalidTLD is returned when the top-level domain is not alphabetic
	// or shorter than two characters.
	ErrInvalidTLD = errors.New("invalid top-level domain")

	// ErrUnknownTLD is returned when the top-level domain is not in the
	// ICANN section of the public suffix list.
	ErrUnknownTLD = errors.New("unknown top-level domain")
)
