package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/mechanical-testing/pkg/pipeline/measure"
	"github.com/askiada/mechanical-testing/pkg/pipeline/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	mt := msr.AddMetric("analyze", 2)
	assert.Same(t, mt, msr.AddMetric("analyze", 8))

	mt.AddDuration(10 * time.Millisecond)
	mt.AddDuration(30 * time.Millisecond)
	mt.AddTransportDuration("root", 4*time.Millisecond)
	mt.AddTransportDuration("root", 8*time.Millisecond)

	assert.Equal(t, int64(2), mt.Count())
	assert.Equal(t, 20*time.Millisecond, mt.AVGDuration())

	transports := mt.AVGTransportDuration()
	require.Contains(t, transports, "root")
	assert.Equal(t, 3*time.Millisecond, transports["root"].Elapsed)
	// averaging does not alter the accumulated values
	assert.Equal(t, 3*time.Millisecond, mt.AVGTransportDuration()["root"].Elapsed)

	assert.Nil(t, msr.GetMetric("unknown"))
	assert.Len(t, msr.AllMetrics(), 1)
}

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(msr)
	require.NoError(t, opt.New())

	parent := &model.StepInfo{Name: "root"}
	step := &model.StepInfo{Name: "analyze", Concurrent: 1}
	sink := &model.StepInfo{Name: "sink", Concurrent: 1}
	require.NoError(t, opt.PrepareStep(parent, step))
	require.NoError(t, opt.PrepareSink(step, sink))

	require.NoError(t, opt.OnStepOutput(parent, step, time.Millisecond, 2*time.Millisecond))
	require.NoError(t, opt.OnSinkOutput(step, sink, time.Millisecond, time.Millisecond))
	require.NoError(t, opt.AfterSink(sink, time.Second))
	require.NoError(t, opt.Finish())

	assert.Equal(t, 2*time.Millisecond, msr.GetMetric("analyze").AVGDuration())
	assert.Equal(t, time.Second, msr.GetMetric("sink").GetTotalDuration())
	assert.Contains(t, msr.AllMetrics(), "start")
	assert.Contains(t, msr.AllMetrics(), "end")
}
