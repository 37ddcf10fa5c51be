package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xmhha/telemetry-monitor/pkg/logger"
)

func TestStart_Validation(t *testing.T) {
	t.Parallel()

	s := New(logger.Noop())
	defer s.Close()

	assert.ErrorIs(t, s.Start(ModeFull, time.Second, false, nil), ErrNilTickFunc)
	assert.ErrorIs(t, s.Start(ModeFull, 0, false, func(Mode) {}), ErrInvalidInterval)
	assert.ErrorIs(t, s.Start(ModeFull, -time.Second, false, func(Mode) {}), ErrInvalidInterval)
}

func TestStart_ImmediateFiresSynchronously(t *testing.T) {
	t.Parallel()

	s := New(logger.Noop())
	defer s.Close()

	var ticks atomic.Int64
	err := s.Start(ModeFull, time.Hour, true, func(mode Mode) {
		assert.Equal(t, ModeFull, mode)
		ticks.Add(1)
	})
	require.NoError(t, err)

	// The interval is an hour: the only tick so far must be the
	// immediate one, delivered before Start returned.
	assert.Equal(t, int64(1), ticks.Load())
}

func TestStart_WithoutImmediateWaitsForTick(t *testing.T) {
	t.Parallel()

	s := New(logger.Noop())
	defer s.Close()

	var ticks atomic.Int64
	err := s.Start(ModeSessions, 20*time.Millisecond, false, func(Mode) {
		ticks.Add(1)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), ticks.Load(), "no tick before the first interval")

	assert.Eventually(t, func() bool {
		return ticks.Load() >= 2
	}, time.Second, 5*time.Millisecond, "periodic ticks should keep firing")
}

func TestStart_SameModeAndIntervalIsNoop(t *testing.T) {
	t.Parallel()

	s := New(logger.Noop())
	defer s.Close()

	var ticks atomic.Int64
	fn := func(Mode) { ticks.Add(1) }

	require.NoError(t, s.Start(ModeFull, time.Hour, true, fn))
	require.NoError(t, s.Start(ModeFull, time.Hour, true, fn))
	require.NoError(t, s.Start(ModeFull, time.Hour, true, fn))

	// The immediate tick fires only on the first, real start.
	assert.Equal(t, int64(1), ticks.Load())

	mode, interval, running := s.Running()
	assert.True(t, running)
	assert.Equal(t, ModeFull, mode)
	assert.Equal(t, time.Hour, interval)
}

func TestStart_ModeChangeRestartsTimer(t *testing.T) {
	t.Parallel()

	s := New(logger.Noop())
	defer s.Close()

	var fullTicks, sessionTicks atomic.Int64
	fn := func(mode Mode) {
		if mode == ModeFull {
			fullTicks.Add(1)
		} else {
			sessionTicks.Add(1)
		}
	}

	require.NoError(t, s.Start(ModeFull, 10*time.Millisecond, false, fn))
	require.NoError(t, s.Start(ModeSessions, 10*time.Millisecond, false, fn))

	mode, _, running := s.Running()
	require.True(t, running)
	assert.Equal(t, ModeSessions, mode)

	assert.Eventually(t, func() bool {
		return sessionTicks.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	// The full-mode timer is gone: its count settles.
	settled := fullTicks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, fullTicks.Load(), "old timer kept ticking after restart")
}

func TestStop_Idempotent(t *testing.T) {
	t.Parallel()

	s := New(logger.Noop())
	defer s.Close()

	// Stopping a never-started scheduler is safe.
	s.Stop()

	var ticks atomic.Int64
	require.NoError(t, s.Start(ModeFull, 10*time.Millisecond, false, func(Mode) {
		ticks.Add(1)
	}))

	s.Stop()
	s.Stop()

	_, _, running := s.Running()
	assert.False(t, running)

	settled := ticks.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load(), "ticks continued after Stop")
}

func TestClose_RejectsRestart(t *testing.T) {
	t.Parallel()

	s := New(logger.Noop())
	s.Close()
	s.Close() // safe twice

	err := s.Start(ModeFull, time.Second, false, func(Mode) {})
	assert.ErrorIs(t, err, ErrSchedulerClosed)
}
