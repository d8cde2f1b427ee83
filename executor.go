package notifymanager

import (
	"context"
	"log"

	"golang.org/x/sync/semaphore"
)

// Executor is the worker pool substrate a Dispatcher hands notification
// tasks to. It is supplied by the caller and treated as an external
// collaborator: Dispatcher never creates goroutines of its own beyond what
// Executor.Execute schedules.
//
// Execute must arrange for task to run, passing it a Context that is
// canceled when the pool is shutting down — this is how external
// cancellation reaches a blocked offer/poll inside a running task, since
// Dispatcher itself exposes no close/shutdown method; shutdown is effected
// by stopping the external worker pool. Execute must not block waiting for
// task to finish; a non-nil return indicates the task was refused (e.g.
// the pool is saturated or shutting down), which Dispatcher surfaces to
// its caller as ErrRejected.
//
// An implementation should isolate each task's goroutine with its own
// recover, the way recoverPanickingTask does for the two implementations
// below: a fatal Invoker error (see FatalError) is deliberately re-raised
// as a panic from within task, and an unrecovered panic in any goroutine
// takes the whole process down, not just the one task's worker.
type Executor interface {
	Execute(task func(ctx context.Context)) error
}

// recoverPanickingTask stops a single notification task's panic from
// taking down the whole process, standing in for the isolation a real
// worker thread gives an uncaught exception. It must be deferred directly
// around the task call, before any other cleanup a task's goroutine
// performs, so that cleanup still runs during the recovered unwind.
func recoverPanickingTask() {
	if r := recover(); r != nil {
		log.Printf(`notifymanager: recovered from a panicking notification task: %v`, r)
	}
}

// boundedExecutor is a convenience Executor for callers who don't already
// run a worker pool. It runs each task in its own goroutine, admission
// controlled by a semaphore.Weighted so that at most maxConcurrency tasks
// run at once; Execute refuses (rather than blocks) once that limit is
// reached.
//
// golang.org/x/sync/semaphore is used here rather than a hand-rolled
// counting channel because TryAcquire's non-blocking, all-or-nothing
// admission check is exactly the "refuse immediately" semantics Execute
// needs, without a separate goroutine to arbitrate it.
type boundedExecutor struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
}

// NewBoundedExecutor returns an Executor that runs up to maxConcurrency
// tasks concurrently, each in its own goroutine, refusing further tasks
// (Execute returns a non-nil error) while saturated. Panics if
// maxConcurrency is not positive.
func NewBoundedExecutor(maxConcurrency int) Executor {
	if maxConcurrency <= 0 {
		panic(`notifymanager: maxConcurrency must be > 0`)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &boundedExecutor{sem: semaphore.NewWeighted(int64(maxConcurrency)), ctx: ctx, cancel: cancel}
}

func (x *boundedExecutor) Execute(task func(ctx context.Context)) error {
	if !x.sem.TryAcquire(1) {
		return ErrRejected
	}
	go func() {
		defer x.sem.Release(1)
		defer recoverPanickingTask()
		task(x.ctx)
	}()
	return nil
}

// Close cancels every task's Context, interrupting in-flight blocking
// queue operations, and causes Execute to admit no further tasks usefully
// (their Context is already canceled on arrival).
func (x *boundedExecutor) Close() error {
	x.cancel()
	return nil
}

// unboundedExecutor runs every task in its own goroutine, unconditionally,
// with a Context that is never canceled. It never refuses. Used in tests
// that don't care about backpressure
// on the pool itself (per-listener backpressure is still enforced by
// boundedQueue regardless of which Executor is in play).
type unboundedExecutor struct{}

func (unboundedExecutor) Execute(task func(ctx context.Context)) error {
	go func() {
		defer recoverPanickingTask()
		task(context.Background())
	}()
	return nil
}

var (
	_ Executor = (*boundedExecutor)(nil)
	_ Executor = unboundedExecutor{}
)
