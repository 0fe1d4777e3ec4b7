package email

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const (
	// maxAddressLength is the longest address SMTP forward paths allow.
	maxAddressLength = 254

	// maxLocalLength is the RFC 5321 limit for the local part.
	maxLocalLength = 64

	// maxLabelLength is the DNS limit for a single label.
	maxLabelLength = 63
)

// atext holds the characters RFC 5322 permits in an unquoted local part,
// in addition to letters, digits and the dot separator.
const atext = "!#$%&'*+/=?^_`{|}~-"

// Validator normalizes and checks email candidates.
type Validator struct {
	// logger receives one debug record per dropped candidate.
	logger *slog.Logger

	// checkSuffix enables the ICANN public suffix check on the TLD.
	checkSuffix bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used to report dropped candidates.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithSuffixCheck enables or disables the public suffix check.
// It is enabled by default.
func WithSuffixCheck(enabled bool) Option {
	return func(v *Validator) {
		v.checkSuffix = enabled
	}
}

// NewValidator creates a Validator with the given options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{checkSuffix: true}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Normalize lower-cases and trims a candidate.
func Normalize(candidate string) string {
	return strings.ToLower(strings.TrimSpace(candidate))
}

// NormalizeAndVerify runs the default Validator over candidates.
func NormalizeAndVerify(candidates []string) []string {
	return NewValidator().NormalizeAndVerify(candidates)
}

// NormalizeAndVerify normalizes every candidate and returns those that pass
// Validate, deduplicated in first-seen order. Invalid candidates are logged
// at debug level and dropped.
func (v *Validator) NormalizeAndVerify(candidates []string) []string {
	if len(candidates) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(candidates))
	var verified []string
	for _, candidate := range candidates {
		addr := canonicalDomain(Normalize(candidate))
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}

		if err := v.Validate(addr); err != nil {
			v.logger.Debug("dropping email candidate",
				"candidate", candidate,
				"reason", err,
			)
			continue
		}
		verified = append(verified, addr)
	}
	return verified
}

// canonicalDomain rewrites the domain of addr in its IDNA mapped form, so
// that spellings differing only in width or case compare equal. Addresses
// the mapping rejects are returned unchanged for Validate to report.
func canonicalDomain(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || domain == "" || strings.Contains(domain, "@") {
		return addr
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return addr
	}
	mapped, err := idna.Lookup.ToUnicode(ascii)
	if err != nil {
		return addr
	}
	return local + "@" + mapped
}

// Validate checks a single, already normalized address.
func Validate(addr string) error {
	return NewValidator().Validate(addr)
}

// Validate checks a single, already normalized address and returns the
// first violation found.
func (v *Validator) Validate(addr string) error {
	if addr == "" {
		return ErrEmpty
	}
	if len(addr) > maxAddressLength {
		return ErrTooLong
	}
	if strings.Count(addr, "@") != 1 {
		return ErrAtSign
	}

	local, domain, _ := strings.Cut(addr, "@")
	if err := validateLocal(local); err != nil {
		return err
	}
	return v.validateDomain(domain)
}

func validateLocal(local string) error {
	if local == "" {
		return fmt.Errorf("%w: empty", ErrInvalidLocalPart)
	}
	if len(local) > maxLocalLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidLocalPart, maxLocalLength)
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return fmt.Errorf("%w: misplaced dot", ErrInvalidLocalPart)
	}
	for _, r := range local {
		if isAlnum(r) || r == '.' || strings.ContainsRune(atext, r) {
			continue
		}
		return fmt.Errorf("%w: character %q", ErrInvalidLocalPart, r)
	}
	return nil
}

func (v *Validator) validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDomain)
	}

	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		return fmt.Errorf("%w: no dot", ErrInvalidDomain)
	}
	for _, label := range labels {
		if err := validateLabel(label); err != nil {
			return err
		}
	}

	tld := labels[len(labels)-1]
	if !isAlphaTLD(tld) {
		return fmt.Errorf("%w: %q", ErrInvalidTLD, tld)
	}

	if v.checkSuffix {
		if _, icann := publicsuffix.PublicSuffix(tld); !icann {
			return fmt.Errorf("%w: %q", ErrUnknownTLD, tld)
		}
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidDomain)
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("%w: label longer than %d characters", ErrInvalidDomain, maxLabelLength)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("%w: label %q starts or ends with a hyphen", ErrInvalidDomain, label)
	}
	for _, r := range label {
		if !isAlnum(r) && r != '-' {
			return fmt.Errorf("%w: character %q in label", ErrInvalidDomain, r)
		}
	}
	return nil
}

// isAlphaTLD accepts letters-only TLDs of two or more characters and
// punycode TLDs ("xn--p1ai").
func isAlphaTLD(tld string) bool {
	if strings.HasPrefix(tld, "xn--") {
		return len(tld) > 4
	}
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
