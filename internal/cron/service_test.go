package cron

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/multierr"

	"github.com/expresskart/expresskart-backend/pkg/logger"
)

type fakeLock struct {
	held     bool
	denied   bool
	releases int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.denied || f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type countingJob struct {
	name string
	err  error
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	svc, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: registry, Lock: lock})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunOnceRunsEveryJobAndCombinesFailures(t *testing.T) {
	ok := &countingJob{name: "ok"}
	failA := &countingJob{name: "fail-a", err: errors.New("boom")}
	failB := &countingJob{name: "fail-b", err: errors.New("bang")}
	lock := &fakeLock{}
	svc := newTestService(t, lock, failA, ok, failB)

	err := svc.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 combined errors, got %d (%v)", n, err)
	}
	for _, j := range []*countingJob{ok, failA, failB} {
		if j.runs != 1 {
			t.Fatalf("job %s ran %d times", j.name, j.runs)
		}
	}
	if lock.held || lock.releases != 1 {
		t.Fatalf("lock not released: held=%v releases=%d", lock.held, lock.releases)
	}
}

func TestRunOnceSkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &countingJob{name: "ok"}
	svc := newTestService(t, &fakeLock{denied: true}, job)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job ran without the lock")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &countingJob{name: "ok"}
	svc := newTestService(t, &fakeLock{}, job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected the initial cycle to run once, ran %d", job.runs)
	}
}

func TestNewServiceRequiresLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without lock")
	}
}
