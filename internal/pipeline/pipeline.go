package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/planecrash/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the incident
// filled in by previous steps.
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the incident to modify.
	Do(ctx context.Context, incident *model.Incident) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// finalSteps run after steps, whether or not one of them failed.
	finalSteps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The first error is still recorded in the incident
// and returned by Execute.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		finalSteps:      make([]Step, 0),
		continueOnError: false,
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
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// AddFinalStep appends a step that runs after all regular steps, even when
// one of them failed. Final steps are skipped only on cancellation.
func (p *Pipeline) AddFinalStep(step Step) {
	p.finalSteps = append(p.finalSteps, step)
}

// Execute runs all pipeline steps in sequence.
// The context is checked before each step.
//
// The first step error is stored in incident.Error and returned. With
// continueOnError false, the remaining regular steps are skipped. An error
// from a final step is returned only when no regular step failed.
func (p *Pipeline) Execute(ctx context.Context, incident *model.Incident) error {
	var firstErr error

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			return err
		}

		if err := p.run(ctx, step, incident); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if !p.continueOnError {
				break
			}
		}
	}

	for _, step := range p.finalSteps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			return err
		}

		if err := p.run(ctx, step, incident); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// run executes one step and records its outcome in the incident.
func (p *Pipeline) run(ctx context.Context, step Step, incident *model.Incident) error {
	p.logger.Debug("executing step", "step", step.Name(), "path", incident.Path)

	if err := step.Do(ctx, incident); err != nil {
		p.logger.Debug("step failed", "step", step.Name(), "path", incident.Path, "error", err)
		if incident.Error == nil {
			incident.Error = err
			incident.ErrorMessage = err.Error()
		}
		return err
	}

	incident.PerformedSteps = append(incident.PerformedSteps, step.Name())
	return nil
}

// StepCount returns the number of steps in the pipeline, final steps included.
func (p *Pipeline) StepCount() int {
	return len(p.steps) + len(p.finalSteps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, p.StepCount())
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	for _, step := range p.finalSteps {
		names = append(names, step.Name())
	}
	return names
}
