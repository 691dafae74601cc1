package pipeline

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorChans(t *testing.T) {
	t.Parallel()

	ecs := errorChans{}
	ec1 := &errorChan{}
	ec2 := &errorChan{}
	doneChan := make(chan struct{}, 2)

	go func() {
		ecs.add(ec1)
		doneChan <- struct{}{}
	}()
	go func() {
		ecs.add(ec2)
		doneChan <- struct{}{}
	}()

	<-doneChan
	<-doneChan
	assert.ElementsMatch(t, []*errorChan{ec1, ec2}, ecs.list)
}

func TestNewErrorChan(t *testing.T) {
	t.Parallel()

	ec1 := newErrorChan("error chan", nil)
	assert.Equal(t, &errorChan{name: "error chan"}, ec1)

	c2 := make(chan error)
	ec2 := newErrorChan("error chan 2", c2)
	assert.Equal(t, &errorChan{name: "error chan 2", c: c2}, ec2)
}

func TestMergeErrorsAllNil(t *testing.T) {
	t.Parallel()

	outErrorChan := mergeErrors(newErrorChan("error chan", nil), newErrorChan("error chan 2", nil))
	gotErr, open := <-outErrorChan
	assert.False(t, open)
	assert.NoError(t, gotErr)
}

func TestMergeErrors(t *testing.T) {
	t.Parallel()

	chan1 := make(chan error)
	chan2 := make(chan error)
	expectedError1 := errors.New("error 1")
	expectedError2 := errors.New("error 2")

	go func() {
		defer close(chan1)
		defer close(chan2)
		chan1 <- expectedError1
		chan2 <- expectedError2
	}()

	gotErrs := []error{}
	for err := range mergeErrors(newErrorChan("stage a", chan1), newErrorChan("stage b", chan2)) {
		gotErrs = append(gotErrs, err)
	}
	require.Len(t, gotErrs, 2)
	sort.Slice(gotErrs, func(i, j int) bool {
		return gotErrs[i].Error() < gotErrs[j].Error()
	})

	assert.ErrorIs(t, gotErrs[0], expectedError1)
	assert.EqualError(t, gotErrs[0], "stage a: error 1")
	assert.ErrorIs(t, gotErrs[1], expectedError2)
}

func TestWaitForPipelineFirstError(t *testing.T) {
	t.Parallel()

	chan1 := make(chan error, 1)
	chan1 <- errors.New("boom")
	close(chan1)
	chan2 := make(chan error)
	close(chan2)

	err := waitForPipeline(newErrorChan("failing", chan1), newErrorChan("ok", chan2))
	assert.EqualError(t, err, "failing: boom")
}
