package pipeline

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/mechanical-testing/pkg/pipeline/model"
)

// Splitter duplicates every element of its input to Total output steps.
type Splitter[I any] struct {
	mu            sync.Mutex
	currIdx       int
	mainStep      *model.Step[I]
	splittedSteps []*model.Step[I]
	bufferSize    int
	Total         int
}

// Get returns the next output step that has not been handed out yet.
func (s *Splitter[I]) Get() (*model.Step[I], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currIdx >= len(s.splittedSteps) {
		return nil, false
	}
	step := s.splittedSteps[s.currIdx]
	s.currIdx++

	return step, true
}

// AddSplitter adds a splitter step. Every output must be consumed, otherwise the splitter
// blocks once the buffer of that output is full.
func AddSplitter[I any](p *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}
	if total <= 0 {
		return nil, ErrSplitterTotal
	}

	splitter := &Splitter[I]{
		Total: total,
		mainStep: &model.Step[I]{
			Details: &model.StepInfo{
				Type:       model.SplitterStepType,
				Name:       name,
				Concurrent: 1,
			},
		},
	}
	for _, opt := range opts {
		opt(splitter)
	}
	if splitter.bufferSize <= 0 {
		splitter.bufferSize = 1
	}
	splitter.mainStep.Details.BufferSize = splitter.bufferSize

	splitter.splittedSteps = make([]*model.Step[I], total)
	for i := range splitter.splittedSteps {
		splitter.splittedSteps[i] = &model.Step[I]{
			Details: splitter.mainStep.Details,
			Output:  make(chan I, splitter.bufferSize),
		}
	}

	for _, opt := range p.opts {
		err := opt.PrepareSplitter(input.Details, splitter.mainStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before splitter function")
		}
	}

	errC := make(chan error, 1)
	go func() {
		defer func() {
			for _, step := range splitter.splittedSteps {
				close(step.Output)
			}
			close(errC)
		}()

		for {
			startIter := time.Now()
			select {
			case <-p.ctx.Done():
				errC <- p.ctx.Err()

				return
			case entry, ok := <-input.Output:
				if !ok {
					return
				}
				startFn := time.Now()
				for _, step := range splitter.splittedSteps {
					select {
					case <-p.ctx.Done():
						errC <- p.ctx.Err()

						return
					case step.Output <- entry:
					}
				}
				endFn := time.Since(startFn)
				endIter := time.Since(startIter) - endFn

				for _, opt := range p.opts {
					err := opt.OnSplitterOutput(input.Details, splitter.mainStep.Details, endIter, endFn)
					if err != nil {
						errC <- errors.Wrap(err, "unable to run splitter output function")

						return
					}
				}
			}
		}
	}()
	p.errcList.add(newErrorChan(name, errC))

	return splitter, nil
}
