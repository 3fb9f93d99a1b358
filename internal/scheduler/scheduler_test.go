package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAddJob_InvalidSpec(t *testing.T) {
	s := New(nil)
	err := s.AddJob("not a schedule", "broken", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.False(t, s.IsRunning())
}

func TestScheduler_RunsJobs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(zap.New(core))

	var runs atomic.Int32
	require.NoError(t, s.AddJob("@every 1s", "tick", func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("boom")
	}))
	assert.True(t, s.IsRunning())

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()

	assert.NotEmpty(t, logs.FilterMessage("scheduled job failed").All())
}

func TestStop_CancelsJobContext(t *testing.T) {
	s := New(nil)
	s.Stop()
	assert.Error(t, s.ctx.Err())
}
