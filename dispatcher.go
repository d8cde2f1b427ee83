package notifymanager

import (
	"context"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

const (
	// defaultMaxOfferAttempts caps the total time a producer will wait for
	// one listener's queue to drain at ten attempts of defaultOfferTimeout
	// each, about ten minutes, before the notification is dropped.
	defaultMaxOfferAttempts = 10
	// defaultOfferTimeout is the per-attempt offer window.
	defaultOfferTimeout = time.Minute
	// defaultPollInterval is the consumer's poll window while idle.
	defaultPollInterval = 10 * time.Millisecond
)

// Config configures a Dispatcher. See New.
type Config[L, N any] struct {
	// Executor runs notification tasks. Must be non-nil.
	Executor Executor

	// Invoker performs delivery of a notification to a listener. Must be
	// non-nil.
	Invoker Invoker[L, N]

	// MaxQueueCapacity bounds each per-listener queue. Must be positive.
	MaxQueueCapacity int

	// Name identifies this Dispatcher in log lines. Defaults to
	// "notifymanager" if empty.
	Name string

	// Logger receives structured log lines. Defaults to DefaultLogger()
	// (disabled) if nil.
	Logger *logiface.Logger[logiface.Event]

	// LogRateLimiter, if set, throttles the repeated Warning/Err log lines
	// a single wedged listener can otherwise produce once per offer
	// attempt. Does not affect whether notifications are dropped, only how
	// much is logged about it.
	LogRateLimiter *catrate.Limiter

	// OfferTimeout overrides the per-attempt offer window. Defaults to one
	// minute.
	OfferTimeout time.Duration

	// MaxOfferAttempts overrides the number of offer attempts before a
	// notification is dropped. Defaults to 10.
	MaxOfferAttempts int

	// PollInterval overrides the consumer poll window. Defaults to 10ms.
	PollInterval time.Duration
}

// Dispatcher routes notifications to per-listener notificationTasks,
// creating and retiring them as needed. See the package documentation.
type Dispatcher[L, N any] struct {
	executor Executor
	invoker  Invoker[L, N]
	registry registry[L, N]

	maxQueueCapacity int
	name             string
	logger           *logiface.Logger[logiface.Event]
	rateLimiter      *catrate.Limiter
	offerTimeout     time.Duration
	maxOfferAttempts int
	pollInterval     time.Duration
}

// New constructs a Dispatcher from cfg. Returns ErrBadArgument if cfg is
// invalid: a non-positive MaxQueueCapacity, or a nil Executor or Invoker.
func New[L, N any](cfg Config[L, N]) (*Dispatcher[L, N], error) {
	if cfg.Executor == nil || cfg.Invoker == nil || cfg.MaxQueueCapacity <= 0 {
		return nil, ErrBadArgument
	}

	name := cfg.Name
	if name == "" {
		name = `notifymanager`
	}

	logger := cfg.Logger
	if logger == nil {
		logger = DefaultLogger()
	}

	offerTimeout := cfg.OfferTimeout
	if offerTimeout <= 0 {
		offerTimeout = defaultOfferTimeout
	}

	maxOfferAttempts := cfg.MaxOfferAttempts
	if maxOfferAttempts <= 0 {
		maxOfferAttempts = defaultMaxOfferAttempts
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Dispatcher[L, N]{
		executor:         cfg.Executor,
		invoker:          cfg.Invoker,
		maxQueueCapacity: cfg.MaxQueueCapacity,
		name:             name,
		logger:           logger,
		rateLimiter:      cfg.LogRateLimiter,
		offerTimeout:     offerTimeout,
		maxOfferAttempts: maxOfferAttempts,
		pollInterval:     pollInterval,
	}, nil
}

// Submit queues a single notification for listener. See SubmitAll.
func (d *Dispatcher[L, N]) Submit(ctx context.Context, listener L, notification N) error {
	return d.SubmitAll(ctx, listener, []N{notification})
}

// SubmitAll queues notifications for listener, creating a new
// notificationTask and handing it to the Executor if none is currently
// live, or appending to the existing one otherwise.
//
// A nil listener, or a listener with no observable reference identity,
// silently returns, as does an empty or all-nil notifications slice. The
// only error SubmitAll can return to the caller is ErrRejected, when the
// Executor refuses a freshly created task. An externally-canceled ctx
// while a producer is blocked offering is treated as shutdown: SubmitAll
// returns nil.
func (d *Dispatcher[L, N]) SubmitAll(ctx context.Context, listener L, notifications []N) error {
	key, ok := newListenerKey(listener)
	if !ok {
		return nil
	}
	notifications = dropNil(notifications)
	if len(notifications) == 0 {
		return nil
	}

	d.logger.Trace().Str(`dispatcher`, d.name).Str(`listener`, listenerString(listener)).Log(`submit`)

	var candidate *notificationTask[L, N]

	for {
		if existing, found := d.registry.get(key); found {
			handled, err := existing.submit(ctx, notifications)
			if err != nil {
				// interrupted while offering: treat as shutdown, stop here.
				return nil
			}
			if handled {
				return nil
			}
			// existing is retiring (done); fall through and try to install
			// a replacement.
		}

		if candidate == nil {
			candidate = newNotificationTask(d, key, listener, notifications)
		}

		if _, inserted := d.registry.insertIfAbsent(key, candidate); !inserted {
			// someone else (the still-retiring task, about to remove
			// itself, or another producer) is now registered; loop back
			// to the top and retry against whoever that is.
			continue
		}

		d.logger.Debug().Str(`dispatcher`, d.name).Str(`listener`, candidate.name).Log(`submitting notification task to executor`)

		if err := d.executor.Execute(candidate.run); err != nil {
			// candidate was visible in the registry the moment it was
			// inserted above, so another producer may have already
			// enqueued onto it; discard before unregistering so that
			// window's notifications are logged as dropped rather than
			// silently lost with the task.
			candidate.discard()
			d.registry.remove(key)
			return ErrRejected
		}
		return nil
	}
}

// MaxQueueCapacity returns the configured per-listener queue capacity.
func (d *Dispatcher[L, N]) MaxQueueCapacity() int { return d.maxQueueCapacity }

// Executor returns the Executor used for notification tasks.
func (d *Dispatcher[L, N]) Executor() Executor { return d.executor }

// Name returns this Dispatcher's configured name.
func (d *Dispatcher[L, N]) Name() string { return d.name }

// ListenerStats returns QueueStats for each listener with a live task at
// the moment of the call. The snapshot may be weakly consistent with
// concurrent submission/retirement.
func (d *Dispatcher[L, N]) ListenerStats() []QueueStats {
	tasks := d.registry.snapshot()
	stats := make([]QueueStats, len(tasks))
	for i, t := range tasks {
		stats[i] = QueueStats{Listener: t.name, QueueDepth: t.depth()}
	}
	return stats
}

func (d *Dispatcher[L, N]) logAllowed(key listenerKey) bool {
	if d.rateLimiter == nil {
		return true
	}
	_, ok := d.rateLimiter.Allow(key)
	return ok
}

func dropNil[N any](notifications []N) []N {
	out := make([]N, 0, len(notifications))
	for _, n := range notifications {
		if isNilNotification(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
