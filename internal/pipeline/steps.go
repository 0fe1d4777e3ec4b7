package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/biomail/internal/email"
	"github.com/nao1215/biomail/internal/instagram"
	"github.com/nao1215/biomail/internal/model"
	"github.com/nao1215/biomail/internal/website"
)

// ProfileFetcher reads profile snapshots.
// *instagram.Fetcher implements it.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, handle string) (*model.Profile, error)
}

// WebsiteFetcher reads external websites.
// *website.Fetcher implements it.
type WebsiteFetcher interface {
	Fetch(ctx context.Context, url string) (*website.Page, error)
}

// ProfileStep fetches the profile snapshot of the job's handle.
type ProfileStep struct {
	fetcher ProfileFetcher
	logger  *slog.Logger
}

// NewProfileStep creates a ProfileStep.
func NewProfileStep(fetcher ProfileFetcher, logger *slog.Logger) *ProfileStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileStep{fetcher: fetcher, logger: logger}
}

// Name returns the step name.
func (s *ProfileStep) Name() string {
	return "profile"
}

// Do fetches the profile. A missing profile skips the job; a lost session
// or cancellation is returned.
func (s *ProfileStep) Do(ctx context.Context, job *model.HandleJob) error {
	profile, err := s.fetcher.FetchProfile(ctx, job.Handle)
	switch {
	case err == nil:
		job.Profile = profile
		return nil
	case errors.Is(err, instagram.ErrNotFound):
		s.logger.Warn("could not load profile; it may be private or not exist", "handle", job.Handle)
		job.Skip(model.StatusNotFound, "profile not found")
		return nil
	case errors.Is(err, instagram.ErrSessionUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		s.logger.Warn("failed to read profile", "handle", job.Handle, "error", err)
		job.Skip(model.StatusFailed, err.Error())
		return nil
	}
}

// BioStep collects candidates from the bio text and the profile's mail
// links.
type BioStep struct {
	logger *slog.Logger
}

// NewBioStep creates a BioStep.
func NewBioStep(logger *slog.Logger) *BioStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &BioStep{logger: logger}
}

// Name returns the step name.
func (s *BioStep) Name() string {
	return "bio"
}

// Do extracts candidates. A profile without bio is recorded as such but
// its mail links are still used.
func (s *BioStep) Do(_ context.Context, job *model.HandleJob) error {
	profile := job.Profile
	if !profile.HasBio() {
		s.logger.Debug("no bio text", "handle", job.Handle)
		job.Status = model.StatusNoBio
		job.Reason = "profile has no bio"
	} else {
		job.AddCandidates(email.Extract(profile.Bio)...)
	}
	if profile != nil {
		job.AddCandidates(profile.MailLinks...)
	}

	if len(job.Candidates) == 0 && job.Status == model.StatusNoBio {
		job.Skip(model.StatusNoBio, job.Reason)
	}
	return nil
}

// WebsiteStep fetches the linked website and collects candidates from it.
type WebsiteStep struct {
	fetcher WebsiteFetcher
	logger  *slog.Logger
}

// NewWebsiteStep creates a WebsiteStep.
func NewWebsiteStep(fetcher WebsiteFetcher, logger *slog.Logger) *WebsiteStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebsiteStep{fetcher: fetcher, logger: logger}
}

// Name returns the step name.
func (s *WebsiteStep) Name() string {
	return "website"
}

// Do fetches the website. No link or an unreachable site skips the job.
func (s *WebsiteStep) Do(ctx context.Context, job *model.HandleJob) error {
	if !job.Profile.HasWebsite() {
		s.logger.Debug("no website linked", "handle", job.Handle)
		job.Skip(model.StatusNoWebsite, "profile links no website")
		return nil
	}

	url := job.Profile.Website
	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("website unreachable", "handle", job.Handle, "url", url, "error", err)
		job.Skip(model.StatusUnreachable, err.Error())
		return nil
	}

	job.AddCandidates(email.Extract(page.Text)...)
	job.AddCandidates(page.MailLinks...)
	return nil
}

// VerifyStep validates the candidates and emits rows.
type VerifyStep struct {
	validator *email.Validator
	logger    *slog.Logger
}

// NewVerifyStep creates a VerifyStep.
func NewVerifyStep(validator *email.Validator, logger *slog.Logger) *VerifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = email.NewValidator(email.WithLogger(logger))
	}
	return &VerifyStep{validator: validator, logger: logger}
}

// Name returns the step name.
func (s *VerifyStep) Name() string {
	return "verify"
}

// Do runs NormalizeAndVerify over the candidates and emits one row per
// verified email.
func (s *VerifyStep) Do(_ context.Context, job *model.HandleJob) error {
	job.Verified = s.validator.NormalizeAndVerify(job.Candidates)
	job.Emit()

	if len(job.Rows) == 0 {
		s.logger.Debug("no email found", "handle", job.Handle, "candidates", len(job.Candidates))
		return nil
	}
	s.logger.Info("found emails",
		"handle", job.Handle,
		"source", job.Source,
		"count", len(job.Rows),
	)
	return nil
}
