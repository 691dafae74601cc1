package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/mechanical-testing/pkg/pipeline/model"
)

type stepHook func(iterationDuration, computationDuration time.Duration) error

func sequentialStep[I any, O any](ctx context.Context, goIdx int, input *model.Step[I], output *model.Step[O], fn func(context.Context, I) ([]O, error), onOutput stepHook) error {
	for {
		start := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}
			startFn := time.Now()
			outs, err := fn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}
			endFn := time.Since(startFn)

			for _, out := range outs {
				// check the context again so that running workers stop adding elements
				select {
				case <-ctx.Done():
					return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
				case output.Output <- out:
					if onOutput != nil {
						err = onOutput(time.Since(start)-endFn, endFn)
						if err != nil {
							return errors.Wrapf(err, "go routine %d", goIdx)
						}
					}
				}
			}
		}
	}
}

func runStep[I any, O any](ctx context.Context, input *model.Step[I], output *model.Step[O], fn func(context.Context, I) ([]O, error), onOutput stepHook) error {
	concurrent := output.Details.Concurrent
	if concurrent <= 1 {
		return sequentialStep(ctx, 0, input, output, fn, onOutput)
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(concurrent)
	// every worker stops as soon as one of them fails
	for goIdx := 0; goIdx < concurrent; goIdx++ {
		localGoIdx := goIdx
		errGrp.Go(func() error {
			return sequentialStep(dCtx, localGoIdx, input, output, fn, onOutput)
		})
	}

	return errGrp.Wait()
}

func singleOutput[I any, O any](fn func(context.Context, I) (O, error)) func(context.Context, I) ([]O, error) {
	return func(ctx context.Context, in I) ([]O, error) {
		out, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}

		return []O{out}, nil
	}
}

func addStep[I any, O any](p *Pipeline, name string, input *model.Step[I], fn func(context.Context, I) ([]O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.NormalStepType,
			Name:       name,
			Concurrent: 1,
		},
	}
	for _, opt := range opts {
		opt(step)
	}
	if step.Details.Concurrent < 1 {
		step.Details.Concurrent = 1
	}
	step.Output = make(chan O, step.Details.BufferSize)

	for _, opt := range p.opts {
		err := opt.PrepareStep(input.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before step function")
		}
	}

	onOutput := func(iterationDuration, computationDuration time.Duration) error {
		for _, opt := range p.opts {
			err := opt.OnStepOutput(input.Details, step.Details, iterationDuration, computationDuration)
			if err != nil {
				return errors.Wrap(err, "unable to run step output function")
			}
		}

		return nil
	}

	errC := make(chan error, 1)
	go func() {
		defer func() {
			close(step.Output)
			close(errC)
		}()
		err := runStep(p.ctx, input, step, fn, onOutput)
		if err != nil {
			errC <- err
		}
	}()
	p.errcList.add(newErrorChan(name, errC))

	return step, nil
}

// AddStepOneToOne adds a step producing exactly one output for every input.
func AddStepOneToOne[I any, O any](p *Pipeline, name string, input *model.Step[I], oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addStep(p, name, input, singleOutput(oneToOneFn), opts...)
}

// AddStepOneToMany adds a step producing any number of outputs, possibly none, for every
// input. The outputs of one input are sent in order.
func AddStepOneToMany[I any, O any](p *Pipeline, name string, input *model.Step[I], oneToManyFn func(context.Context, I) ([]O, error), opts ...StepOption[O]) (*model.Step[O], error) {
	return addStep(p, name, input, oneToManyFn, opts...)
}
