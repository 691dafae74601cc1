package metrics

import (
	"time"

	"github.com/askiada/mechanical-testing/pkg/pipeline/model"
)

type pipelineRecorder struct {
	recorder Recorder
}

// PipelineRecorder is a pipeline option observing the computation time of every element of
// every stage.
func PipelineRecorder(recorder Recorder) model.PipelineOption {
	return &pipelineRecorder{recorder: recorder}
}

func (p *pipelineRecorder) New() error {
	return nil
}

func (p *pipelineRecorder) PrepareStep(_, _ *model.StepInfo) error {
	return nil
}

func (p *pipelineRecorder) OnStepOutput(_, step *model.StepInfo, _, computationDuration time.Duration) error {
	p.recorder.ObserveStageDuration(step.Name, computationDuration)

	return nil
}

func (p *pipelineRecorder) PrepareSplitter(_, _ *model.StepInfo) error {
	return nil
}

func (p *pipelineRecorder) OnSplitterOutput(_, step *model.StepInfo, _, computationDuration time.Duration) error {
	p.recorder.ObserveStageDuration(step.Name, computationDuration)

	return nil
}

func (p *pipelineRecorder) PrepareSink(_, _ *model.StepInfo) error {
	return nil
}

func (p *pipelineRecorder) OnSinkOutput(_, step *model.StepInfo, _, computationDuration time.Duration) error {
	p.recorder.ObserveStageDuration(step.Name, computationDuration)

	return nil
}

func (p *pipelineRecorder) AfterSink(_ *model.StepInfo, _ time.Duration) error {
	return nil
}

func (p *pipelineRecorder) Finish() error {
	return nil
}
