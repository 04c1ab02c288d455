package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"leon/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReflector struct {
	calls atomic.Int32
	err   error
}

func (r *countingReflector) Reflect(ctx context.Context) (*models.Leon, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	leon := models.NewSeedLeon(time.Now())
	leon.Version = int64(r.calls.Load()) + 1
	return leon, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]string
	released int
}

func (l *fakeLocker) AcquireLock(ctx context.Context, key, value string, expiration time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]string{}
	}
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = value
	return true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, key, value string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] != value {
		return false, nil
	}
	delete(l.held, key)
	l.released++
	return true, nil
}

func TestReflectionJob_RunsOnceWithoutSchedule(t *testing.T) {
	reflector := &countingReflector{}
	job, err := NewReflectionJob(reflector, 2*time.Second, "", nil)
	require.NoError(t, err)

	first := job.GetNextRunTime()
	assert.WithinDuration(t, time.Now().Add(2*time.Second), first, 500*time.Millisecond)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, int32(1), reflector.calls.Load())
	assert.True(t, job.GetNextRunTime().IsZero())
}

func TestReflectionJob_CronSchedule(t *testing.T) {
	job, err := NewReflectionJob(&countingReflector{}, 0, "*/5 * * * *", nil)
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))

	next := job.GetNextRunTime()
	assert.True(t, next.After(time.Now()))
	assert.Zero(t, next.Minute()%5)

	_, err = NewReflectionJob(&countingReflector{}, 0, "every tuesday", nil)
	assert.Error(t, err)
}

func TestReflectionJob_Lock(t *testing.T) {
	reflector := &countingReflector{}
	locker := &fakeLocker{}
	job, err := NewReflectionJob(reflector, 0, "", locker)
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, int32(1), reflector.calls.Load())
	assert.Equal(t, 1, locker.released)

	// Another replica holds the lock
	locker.held = map[string]string{reflectionLockKey: "other"}
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, int32(1), reflector.calls.Load())
}

func TestReflectionJob_PropagatesError(t *testing.T) {
	job, err := NewReflectionJob(&countingReflector{err: errors.New("record not found")}, 0, "", nil)
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record not found")
}

func TestJobScheduler_RunsOneShotJob(t *testing.T) {
	reflector := &countingReflector{}
	job, err := NewReflectionJob(reflector, 10*time.Millisecond, "", nil)
	require.NoError(t, err)

	scheduler := NewJobScheduler()
	scheduler.Register("reflection", job)
	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	assert.Eventually(t, func() bool {
		return reflector.calls.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// A zero next run time is not rescheduled
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), reflector.calls.Load())

	assert.Eventually(t, func() bool {
		status := scheduler.GetStatus()["reflection"]
		return !status.LastRunTime.IsZero() && status.NextRunTime.IsZero()
	}, time.Second, 10*time.Millisecond)
}

func TestJobScheduler_RunNowUnknownJob(t *testing.T) {
	scheduler := NewJobScheduler()
	assert.Error(t, scheduler.RunNow("missing"))
}
