// Package enrich gathers best-effort weather and traffic sections for a
// prompt. Sections are produced by independent steps that run in parallel
// within a stage; a failing or panicking step is logged and leaves its
// section empty.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrStepPanicked wraps a panic recovered from a step.
var ErrStepPanicked = errors.New("enrichment step panicked")

// Step mutates item. Steps in the same stage run concurrently and must
// write disjoint fields.
type Step[T any] func(ctx context.Context, item *T) error

// Stage is a set of steps started together; the next stage waits for all
// of them.
type Stage[T any] struct {
	name  string
	steps []Step[T]
}

// NewStage constructs a named Stage.
func NewStage[T any](name string, steps ...Step[T]) Stage[T] {
	return Stage[T]{name: name, steps: steps}
}

// Pipeline applies its stages to an item in order.
type Pipeline[T any] struct {
	stages []Stage[T]
	logger *slog.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline[T any](logger *slog.Logger, stages ...Stage[T]) *Pipeline[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline[T]{stages: stages, logger: logger}
}

// Run executes every stage against item. Step errors are logged and do
// not stop the pipeline.
func (p *Pipeline[T]) Run(ctx context.Context, item *T) {
	for _, stage := range p.stages {
		var wg sync.WaitGroup
		for i, step := range stage.steps {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := runStep(ctx, step, item); err != nil {
					p.logger.WarnContext(ctx, "enrichment step failed", "stage", stage.name, "step", i, "error", err)
				}
			}()
		}
		wg.Wait()
	}
}

// runStep reports a panicking step as an error so the request keeps going.
func runStep[T any](ctx context.Context, step Step[T], item *T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStepPanicked, r)
		}
	}()
	return step(ctx, item)
}
