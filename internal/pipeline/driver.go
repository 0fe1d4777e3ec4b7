package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/biomail/internal/email"
	"github.com/nao1215/biomail/internal/model"
)

// Driver processes handles one after another and accumulates the rows.
type Driver struct {
	source    model.Source
	profiles  ProfileFetcher
	sites     WebsiteFetcher
	validator *email.Validator
	logger    *slog.Logger
	pipeline  *Pipeline
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithDriverLogger sets the logger used by the driver and its steps.
func WithDriverLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithValidator replaces the default email validator.
func WithValidator(v *email.Validator) DriverOption {
	return func(d *Driver) {
		d.validator = v
	}
}

// NewDriver creates a Driver for source. sites is only used in
// external-website mode and may be nil otherwise.
func NewDriver(source model.Source, profiles ProfileFetcher, sites WebsiteFetcher, opts ...DriverOption) *Driver {
	d := &Driver{
		source:   source,
		profiles: profiles,
		sites:    sites,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	p := New(WithLogger(d.logger))
	p.AddStep(NewProfileStep(d.profiles, d.logger))
	if source == model.SourceExternalWebsite {
		p.AddStep(NewWebsiteStep(d.sites, d.logger))
	} else {
		p.AddStep(NewBioStep(d.logger))
	}
	p.AddStep(NewVerifyStep(d.validator, d.logger))
	d.pipeline = p

	return d
}

// StepNames returns the steps each handle goes through.
func (d *Driver) StepNames() []string {
	return d.pipeline.StepNames()
}

// Run processes handles in order. The returned run is never nil: when a
// step fails or ctx is cancelled, it holds the rows gathered so far, is
// marked interrupted and the error is returned alongside it.
func (d *Driver) Run(ctx context.Context, handles []string) (*model.Run, error) {
	run := model.NewRun(d.source)
	defer run.Finish()

	d.logger.Info("starting run",
		"source", d.source,
		"handles", len(handles),
	)
	start := time.Now()

	for i, handle := range handles {
		if err := ctx.Err(); err != nil {
			run.Interrupted = true
			d.logger.Warn("run cancelled", "processed", i, "total", len(handles))
			return run, err
		}

		d.logger.Debug("processing handle", "handle", handle, "index", i+1, "total", len(handles))

		job := model.NewHandleJob(handle, d.source)
		err := d.pipeline.Execute(ctx, job)
		run.Add(job)
		if err != nil {
			run.Interrupted = true
			if ctx.Err() != nil {
				d.logger.Warn("run cancelled", "processed", i+1, "total", len(handles))
			} else {
				d.logger.Error("aborting run", "handle", handle, "error", err)
			}
			return run, err
		}
	}

	d.logger.Info("run complete",
		"handles", len(handles),
		"rows", len(run.Rows),
		"elapsed", time.Since(start),
	)
	return run, nil
}
