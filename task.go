package notifymanager

import (
	"context"
	"errors"
	"sync"
)

// notificationTask is the per-listener worker: it owns one boundedQueue and
// drains it serially, honouring the queuingLock/queuedNotifications
// handshake with producers so retirement is safe.
//
// State machine: RUNNING -> RETIRING (done set to true under queuingLock)
// -> REMOVED (unlinked from the registry) -> terminal. A task, once
// terminal, is never reused; Dispatcher.Submit creates a fresh one.
type notificationTask[L, N any] struct {
	d    *Dispatcher[L, N]
	key  listenerKey
	name string // cached listener string form, computed once

	listener L
	queue    *boundedQueue[N]

	queuingLock sync.Mutex
	// guarded by queuingLock
	done                bool
	queuedNotifications bool
}

// newNotificationTask constructs a task seeded with notifications already
// in its queue, before the task is published to the registry. Seeding is
// non-blocking: nothing is draining the queue yet (run hasn't been handed
// to the Executor), so a blocking, timed-retry offer here could only ever
// time out. If more notifications are seeded than maxQueueCapacity allows,
// the excess is dropped with the same warning used for a listener that
// can't keep up post-publication.
func newNotificationTask[L, N any](d *Dispatcher[L, N], key listenerKey, listener L, seed []N) *notificationTask[L, N] {
	t := &notificationTask[L, N]{
		d:        d,
		key:      key,
		name:     listenerString(listener),
		listener: listener,
		queue:    newBoundedQueue[N](d.maxQueueCapacity),
	}
	for _, n := range seed {
		select {
		case t.queue.ch <- n:
		default:
			t.warnOfferExhausted()
		}
	}
	return t
}

// submit appends notifications to the task's queue. It returns ok=false if
// the task has already decided to retire (done), in which case the caller
// must create a replacement task. A non-nil error indicates ctx was
// canceled mid-offer; the caller treats that as shutdown, not as a reason
// to retry.
func (t *notificationTask[L, N]) submit(ctx context.Context, notifications []N) (ok bool, err error) {
	t.queuingLock.Lock()
	defer t.queuingLock.Unlock()

	if t.done {
		return false, nil
	}

	for _, n := range notifications {
		accepted := false
		for attempt := 1; attempt <= t.d.maxOfferAttempts; attempt++ {
			t.d.logger.Debug().Str(`dispatcher`, t.d.name).Str(`listener`, t.name).Int(`attempt`, attempt).Log(`offering notification`)
			offered, offerErr := t.queue.offer(ctx, t.d.offerTimeout, n)
			if offerErr != nil {
				return true, offerErr
			}
			if offered {
				accepted = true
				break
			}
			t.warnOfferTimeout(attempt)
		}
		if !accepted {
			t.warnOfferExhausted()
		}
	}

	t.queuedNotifications = true
	return true, nil
}

// run drains the queue serially until it decides to retire. It is called
// exactly once, by the Executor.
func (t *notificationTask[L, N]) run(ctx context.Context) {
	defer t.d.registry.remove(t.key)

	for {
		n, ok, err := t.queue.poll(ctx, t.d.pollInterval)
		if err != nil {
			t.d.logger.Debug().Str(`dispatcher`, t.d.name).Str(`listener`, t.name).Log(`poll interrupted, shutting down task`)
			return
		}
		if ok {
			t.notifyListener(n)
			continue
		}

		// queue looked empty: try to claim the lock before committing to
		// retire. If a producer is mid-offer it holds the lock and we
		// simply loop back to poll again.
		if t.queuingLock.TryLock() {
			if !t.queuedNotifications {
				t.done = true
				t.queuingLock.Unlock()
				return
			}
			t.queuedNotifications = false
			t.queuingLock.Unlock()
		}
	}
}

// notifyListener invokes the configured Invoker with n.
func (t *notificationTask[L, N]) notifyListener(n N) {
	t.d.logger.Debug().Str(`dispatcher`, t.d.name).Str(`listener`, t.name).Log(`invoking listener`)

	err := t.d.invoker(t.listener, n)
	if err == nil {
		return
	}

	var fatal *FatalError
	if errors.As(err, &fatal) {
		t.queuingLock.Lock()
		t.done = true
		t.queuingLock.Unlock()
		t.d.logger.Crit().Str(`dispatcher`, t.d.name).Str(`listener`, t.name).Err(fatal).Log(`fatal invoker error, escalating`)
		panic(fatal)
	}

	if t.d.logAllowed(t.key) {
		t.d.logger.Err().Str(`dispatcher`, t.d.name).Str(`listener`, t.name).Err(err).Log(`error notifying listener`)
	}
}

func (t *notificationTask[L, N]) warnOfferTimeout(attempt int) {
	if !t.d.logAllowed(t.key) {
		return
	}
	t.d.logger.Warning().
		Str(`dispatcher`, t.d.name).
		Str(`listener`, t.name).
		Int(`attempt`, attempt).
		Int(`maxAttempts`, t.d.maxOfferAttempts).
		Int(`capacity`, t.d.maxQueueCapacity).
		Log(`timed out offering a notification to the listener queue`)
}

func (t *notificationTask[L, N]) warnOfferExhausted() {
	if !t.d.logAllowed(t.key) {
		return
	}
	t.d.logger.Warning().
		Str(`dispatcher`, t.d.name).
		Str(`listener`, t.name).
		Int(`maxAttempts`, t.d.maxOfferAttempts).
		Log(`dropping notification: exceeded max offer attempts, listener is likely in an unrecoverable state`)
}

func (t *notificationTask[L, N]) depth() int {
	return t.queue.size()
}

// discard retires a task that was registered but never handed to the
// Executor (Execute refused it), and drops whatever notifications are
// sitting in its queue at that point. Because submit holds queuingLock for
// its entire duration, a producer racing to enqueue onto this same task
// between its registration and the failed Execute call is either blocked
// on the lock (and will see done and fall through to install a
// replacement task once discard releases it) or has already finished and
// left its notifications in the queue, where this drains and logs them
// rather than letting registry.remove silently discard them.
func (t *notificationTask[L, N]) discard() {
	t.queuingLock.Lock()
	t.done = true
	var dropped int
	for {
		select {
		case <-t.queue.ch:
			dropped++
			continue
		default:
		}
		break
	}
	t.queuingLock.Unlock()

	if dropped > 0 && t.d.logAllowed(t.key) {
		t.d.logger.Warning().
			Str(`dispatcher`, t.d.name).
			Str(`listener`, t.name).
			Int(`dropped`, dropped).
			Log(`dropping queued notifications: task was refused by the executor`)
	}
}
