package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool_RunsAllJobsBeforeStop(t *testing.T) {
	p := NewPool(3, 16)
	var n atomic.Int64
	for i := 0; i < 100; i++ {
		assert.NoError(t, p.Submit(func() { n.Add(1) }))
	}
	p.Stop()
	assert.EqualValues(t, 100, n.Load())
}

func TestPool_SurvivesPanics(t *testing.T) {
	p := NewPool(1, 4)
	var n atomic.Int64
	assert.NoError(t, p.Submit(func() { panic("boom") }))
	assert.NoError(t, p.Submit(func() { n.Add(1) }))
	p.Stop()
	assert.EqualValues(t, 1, n.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1, 1)
	p.Stop()
	p.Stop()
	assert.ErrorIs(t, p.Submit(func() {}), ErrStopped)
}
