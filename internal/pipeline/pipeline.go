package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/biomail/internal/model"
)

// Step is one stage of per-handle processing.
type Step interface {
	// Do advances the job. Expected absences are recorded on the job
	// (usually through job.Skip) and nil is returned; an error aborts the
	// whole run.
	Do(ctx context.Context, job *model.HandleJob) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps against job until one fails or skips the job.
// Cancellation is checked between steps; steps bound their own waits.
func (p *Pipeline) Execute(ctx context.Context, job *model.HandleJob) error {
	for _, step := range p.steps {
		if job.Skipped {
			return nil
		}

		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"handle", job.Handle,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name(), "handle", job.Handle)

		if err := step.Do(ctx, job); err != nil {
			job.Status = model.StatusFailed
			job.Reason = err.Error()
			return err
		}
		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
