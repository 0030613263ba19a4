// Package recursion runs bounded generate, evaluate and refine loops used by
// the agents to improve an output until it scores well enough.
package recursion

import (
	"context"
	"fmt"
)

const (
	DefaultMaxIterations = 3
	DefaultMinScore      = 0.8
)

// Options bounds the loop. Zero values take the defaults; a nil MinScore
// means DefaultMinScore, so Threshold(0) accepts the first candidate.
type Options struct {
	MaxIterations int
	MinScore      *float64
}

// Threshold returns a MinScore option clamped to [0,1].
func Threshold(score float64) *float64 {
	s := ClampScore(score)
	return &s
}

func (o Options) withDefaults() Options {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.MinScore == nil {
		o.MinScore = Threshold(DefaultMinScore)
	}
	return o
}

// Evaluation is the verdict on one candidate. Value is what gets refined or
// returned, and may differ from the candidate that was scored.
type Evaluation[T any] struct {
	Score    float64
	Feedback string
	Value    T
}

// Result is the outcome of Run.
type Result[T any] struct {
	Value      T
	Score      float64
	Iterations int
	Feedback   string
}

type (
	GenerateFunc[T any] func(ctx context.Context, iteration int) (T, error)
	EvaluateFunc[T any] func(ctx context.Context, candidate T, iteration int) (Evaluation[T], error)
	RefineFunc[T any]   func(ctx context.Context, value T, feedback string, iteration int) (T, error)
)

// Run generates a first candidate and evaluates it. While the score stays
// below opts.MinScore and iterations remain, the evaluated value is refined
// with the evaluator's feedback and scored again. Iterations are 1-based.
func Run[T any](ctx context.Context, generate GenerateFunc[T], evaluate EvaluateFunc[T], refine RefineFunc[T], opts Options) (Result[T], error) {
	opts = opts.withDefaults()

	iteration := 1
	candidate, err := generate(ctx, iteration)
	if err != nil {
		return Result[T]{}, fmt.Errorf("generate: %w", err)
	}
	eval, err := evaluate(ctx, candidate, iteration)
	if err != nil {
		return Result[T]{}, fmt.Errorf("evaluate iteration %d: %w", iteration, err)
	}

	for eval.Score < *opts.MinScore && iteration < opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return Result[T]{}, err
		}
		candidate, err = refine(ctx, eval.Value, eval.Feedback, iteration)
		if err != nil {
			return Result[T]{}, fmt.Errorf("refine iteration %d: %w", iteration, err)
		}
		iteration++
		eval, err = evaluate(ctx, candidate, iteration)
		if err != nil {
			return Result[T]{}, fmt.Errorf("evaluate iteration %d: %w", iteration, err)
		}
	}

	return Result[T]{
		Value:      eval.Value,
		Score:      eval.Score,
		Iterations: iteration,
		Feedback:   eval.Feedback,
	}, nil
}
