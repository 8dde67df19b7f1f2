package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"embdash/internal/infrastructure"
)

// ErrSkip is returned from Step.Validate when a step has nothing to do
// for this run; the runner records it as skipped and continues.
var ErrSkip = errors.New("step skipped")

// Step is one unit of pipeline work.
type Step interface {
	// ID returns the machine identifier of the step.
	ID() string
	// Name returns the human-readable name of the step.
	Name() string
	// Validate checks preconditions against the current state. It may
	// return ErrSkip (possibly wrapped) to skip the step.
	Validate(state *State) error
	// Execute runs the step, reading and extending the shared state.
	Execute(ctx context.Context, state *State) error
}

// Runner executes steps strictly in order. Any step failure ends the
// run; later steps depend on earlier artifacts, so there is nothing
// useful to continue with.
type Runner struct {
	steps   []Step
	states  []*StepState
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
}

// NewRunner creates a runner over the given steps. metrics may be nil.
func NewRunner(steps []Step, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Runner {
	states := make([]*StepState, len(steps))
	for i, step := range steps {
		states[i] = NewStepState(step.ID(), step.Name())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{steps: steps, states: states, logger: logger, metrics: metrics}
}

// States returns the per-step runtime states, in execution order.
func (r *Runner) States() []StepState {
	out := make([]StepState, len(r.states))
	for i, s := range r.states {
		out[i] = s.Snapshot()
	}
	return out
}

// Run executes the pipeline.
func (r *Runner) Run(ctx context.Context, state *State) error {
	tracer := otel.Tracer(infrastructure.ServiceName)
	runStart := time.Now()

	ctx, runSpan := tracer.Start(ctx, "pipeline.run")
	defer runSpan.End()

	for i, step := range r.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline cancelled before step %s: %w", step.ID(), err)
		}

		stepState := r.states[i]
		if err := step.Validate(state); err != nil {
			if errors.Is(err, ErrSkip) {
				stepState.Skip(err.Error())
				r.logger.InfoContext(ctx, "step skipped",
					slog.String("step", step.ID()),
					slog.String("reason", err.Error()))
				continue
			}
			stepState.Fail(err)
			return fmt.Errorf("step %s validation failed: %w", step.ID(), err)
		}

		stepCtx, span := tracer.Start(ctx, "pipeline.step",
			trace.WithAttributes(attribute.String("step.id", step.ID())))

		stepState.Start()
		r.logger.InfoContext(stepCtx, "step started",
			slog.String("step", step.ID()),
			slog.String("name", step.Name()))

		err := step.Execute(stepCtx, state)
		duration := time.Since(*stepState.StartTime)
		infrastructure.RecordStepMetrics(stepCtx, r.metrics, step.ID(), duration, err == nil)

		if err != nil {
			stepState.Fail(err)
			infrastructure.RecordError(stepCtx, err)
			span.End()
			r.logger.ErrorContext(stepCtx, "step failed",
				slog.String("step", step.ID()),
				slog.Duration("duration", duration),
				slog.String("error", err.Error()))
			return fmt.Errorf("step %s failed: %w", step.ID(), err)
		}

		stepState.Complete("")
		span.End()
		r.logger.InfoContext(stepCtx, "step completed",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration))
	}

	total := time.Since(runStart)
	if r.metrics != nil {
		r.metrics.PipelineDuration.Record(ctx, total.Seconds())
	}
	r.logger.InfoContext(ctx, "pipeline completed",
		slog.Int("steps", len(r.steps)),
		slog.Duration("duration", total))
	return nil
}
