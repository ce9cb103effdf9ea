package services

import (
	"context"
	"errors"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/cafe-venue/utils"
)

// Job runs on the loop goroutine with the loop's context.
type Job func(ctx context.Context)

var ErrLoopStopped = errors.New("event loop stopped")

type queuedJob struct {
	name string
	run  Job
	done chan struct{}
}

// Loop executes jobs one at a time in submission order. Every socket message,
// connect/close event and scheduler tick goes through it, so handlers never
// interleave.
type Loop struct {
	jobs    chan queuedJob
	stopped chan struct{}
}

func NewLoop(buffer int) *Loop {
	return &Loop{
		jobs:    make(chan queuedJob, buffer),
		stopped: make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-l.jobs:
			l.exec(ctx, job)
		}
	}
}

// Submit queues job; false once the loop has stopped.
func (l *Loop) Submit(name string, job Job) bool {
	return l.enqueue(queuedJob{name: name, run: job})
}

// Do queues job and waits for it to finish.
func (l *Loop) Do(ctx context.Context, name string, job Job) error {
	q := queuedJob{name: name, run: job, done: make(chan struct{})}
	if !l.enqueue(q) {
		return ErrLoopStopped
	}
	select {
	case <-q.done:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) enqueue(q queuedJob) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.jobs <- q:
		return true
	case <-l.stopped:
		return false
	}
}

func (l *Loop) exec(ctx context.Context, job queuedJob) {
	defer func() {
		if job.done != nil {
			close(job.done)
		}
		if r := recover(); r != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"job":   job.name,
				"panic": r,
			}).Errorf("job panicked\n%s", debug.Stack())
		}
	}()
	job.run(ctx)
}
