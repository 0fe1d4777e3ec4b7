package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownStatus is returned when a stored status label is not recognized.
var ErrUnknownStatus = errors.New("unknown status")

// ResultRow is a single line of output.
type ResultRow struct {
	// Handle is the profile the email belongs to.
	Handle string `json:"handle"`

	// Email is a verified, lower-cased address.
	Email string `json:"email"`

	// Source records where the email was discovered.
	Source Source `json:"source"`
}

// Status classifies how a handle left the pipeline.
type Status int

const (
	// StatusPending means the handle has not finished processing.
	StatusPending Status = iota

	// StatusEmailsFound means at least one verified email was emitted.
	StatusEmailsFound

	// StatusNoEmail means text was scanned but nothing survived validation.
	StatusNoEmail

	// StatusNoBio means the profile exposes no bio text.
	StatusNoBio

	// StatusNoWebsite means the profile links no external website.
	StatusNoWebsite

	// StatusNotFound means the profile page never rendered
	// (private, deleted or nonexistent account).
	StatusNotFound

	// StatusUnreachable means the external website could not be fetched.
	StatusUnreachable

	// StatusFailed means a session-fatal error interrupted the handle.
	StatusFailed
)

// String returns a short lower-case label.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusEmailsFound:
		return "found"
	case StatusNoEmail:
		return "no-email"
	case StatusNoBio:
		return "no-bio"
	case StatusNoWebsite:
		return "no-website"
	case StatusNotFound:
		return "not-found"
	case StatusUnreachable:
		return "unreachable"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for stored runs.
func (s *Status) UnmarshalText(text []byte) error {
	for candidate := StatusPending; candidate <= StatusFailed; candidate++ {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownStatus, text)
}

// HandleOutcome records what happened to one handle.
type HandleOutcome struct {
	Handle string `json:"handle"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
	Emails int    `json:"emails"`
}

// Run is the aggregated result of one invocation.
type Run struct {
	// ID is assigned by the history database; zero until saved.
	ID int64 `json:"id,omitempty"`

	// Source is the mode the run was executed in.
	Source Source `json:"source"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Rows holds every emitted row in handle order, then discovery order.
	Rows []ResultRow `json:"rows"`

	// Outcomes holds one entry per processed handle, in input order.
	Outcomes []HandleOutcome `json:"outcomes"`

	// Profiles holds the snapshots that were successfully fetched.
	Profiles []Profile `json:"profiles,omitempty"`

	// Interrupted is set when the run stopped before all handles were
	// processed (signal or session failure).
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewRun creates an empty run for the given mode.
func NewRun(source Source) *Run {
	return &Run{
		Source:    source,
		StartedAt: time.Now(),
		Rows:      make([]ResultRow, 0),
		Outcomes:  make([]HandleOutcome, 0),
	}
}

// Add appends the result of a finished job to the run.
func (r *Run) Add(job *HandleJob) {
	r.Rows = append(r.Rows, job.Rows...)
	r.Outcomes = append(r.Outcomes, job.Outcome())
	if job.Profile != nil {
		r.Profiles = append(r.Profiles, *job.Profile)
	}
}

// Finish stamps the end time.
func (r *Run) Finish() {
	r.FinishedAt = time.Now()
}

// HasRows reports whether the run produced any output.
func (r *Run) HasRows() bool {
	return len(r.Rows) > 0
}

// Summary counts handles per status.
type Summary struct {
	Handles int
	Rows    int
	ByState map[Status]int
}

// Summarize returns aggregate counts for display.
func (r *Run) Summarize() Summary {
	s := Summary{
		Handles: len(r.Outcomes),
		Rows:    len(r.Rows),
		ByState: make(map[Status]int),
	}
	for _, o := range r.Outcomes {
		s.ByState[o.Status]++
	}
	return s
}
