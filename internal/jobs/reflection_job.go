package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"leon/internal/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

const reflectionLockKey = "lock:reflection"

// Reflector applies the reflection update to the singleton
type Reflector interface {
	Reflect(ctx context.Context) (*models.Leon, error)
}

// Locker guards a job so that only one replica runs it at a time
type Locker interface {
	AcquireLock(ctx context.Context, lockKey, lockValue string, expiration time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, lockKey, lockValue string) (bool, error)
}

// ReflectionJob runs the reflection update once, delay after startup, and
// then on an optional cron schedule
type ReflectionJob struct {
	reflector Reflector
	locker    Locker
	schedule  cron.Schedule
	firstRun  time.Time

	mu  sync.Mutex
	ran bool
}

// NewReflectionJob creates the job. An empty cronExpr means a single run.
// locker may be nil when only one replica is deployed.
func NewReflectionJob(reflector Reflector, delay time.Duration, cronExpr string, locker Locker) (*ReflectionJob, error) {
	job := &ReflectionJob{
		reflector: reflector,
		locker:    locker,
		firstRun:  time.Now().Add(delay),
	}

	if cronExpr != "" {
		schedule, err := cron.ParseStandard(cronExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid reflection schedule %q: %w", cronExpr, err)
		}
		job.schedule = schedule
	}

	return job, nil
}

// Run applies the reflection update
func (j *ReflectionJob) Run(ctx context.Context) error {
	j.mu.Lock()
	j.ran = true
	j.mu.Unlock()

	if j.locker != nil {
		token := uuid.NewString()
		acquired, err := j.locker.AcquireLock(ctx, reflectionLockKey, token, time.Minute)
		if err != nil {
			return fmt.Errorf("failed to acquire reflection lock: %w", err)
		}
		if !acquired {
			log.Println("⏭️  [REFLECTION] Another instance holds the lock, skipping")
			return nil
		}
		defer func() {
			if _, err := j.locker.ReleaseLock(context.Background(), reflectionLockKey, token); err != nil {
				log.Printf("⚠️  [REFLECTION] Failed to release lock: %v", err)
			}
		}()
	}

	leon, err := j.reflector.Reflect(ctx)
	if err != nil {
		return fmt.Errorf("reflection update failed: %w", err)
	}

	log.Printf("🦁 [REFLECTION] León reflexionó (version %d, %d experiencias)", leon.Version, len(leon.Experiences))
	return nil
}

// GetNextRunTime returns the first run until it has happened, then the next
// cron activation, or zero when there is no schedule
func (j *ReflectionJob) GetNextRunTime() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.ran {
		return j.firstRun
	}
	if j.schedule == nil {
		return time.Time{}
	}
	return j.schedule.Next(time.Now())
}
