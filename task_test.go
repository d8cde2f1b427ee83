package notifymanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewNotificationTask_seedOverflowDropsExcess(t *testing.T) {
	d, err := New(Config[*testListener, int]{
		Executor:         NewBoundedExecutor(1),
		Invoker:          func(*testListener, int) error { return nil },
		MaxQueueCapacity: 2,
		Logger:           DefaultLogger(),
	})
	require.NoError(t, err)

	listener := &testListener{id: 1}
	key, ok := newListenerKey(listener)
	require.True(t, ok)

	task := newNotificationTask(d, key, listener, []int{1, 2, 3, 4})
	require.Equal(t, 2, task.depth())
}

func TestNotificationTask_submitAfterDoneReturnsFalse(t *testing.T) {
	d, err := New(Config[*testListener, int]{
		Executor:         NewBoundedExecutor(1),
		Invoker:          func(*testListener, int) error { return nil },
		MaxQueueCapacity: 4,
		Logger:           DefaultLogger(),
	})
	require.NoError(t, err)

	listener := &testListener{id: 1}
	key, ok := newListenerKey(listener)
	require.True(t, ok)

	task := newNotificationTask(d, key, listener, nil)
	task.done = true

	handled, err := task.submit(context.Background(), []int{1})
	require.False(t, handled)
	require.NoError(t, err)
}

func TestNotificationTask_submitOfferTimesOutThenExhausts(t *testing.T) {
	d, err := New(Config[*testListener, int]{
		Executor:         NewBoundedExecutor(1),
		Invoker:          func(*testListener, int) error { return nil },
		MaxQueueCapacity: 1,
		Logger:           DefaultLogger(),
		OfferTimeout:     5 * time.Millisecond,
		MaxOfferAttempts: 2,
	})
	require.NoError(t, err)

	listener := &testListener{id: 1}
	key, ok := newListenerKey(listener)
	require.True(t, ok)

	// seed fills the one slot; nothing is draining it (run was never
	// started), so a second submit must exhaust its retries and drop
	// silently rather than block forever.
	task := newNotificationTask(d, key, listener, []int{1})

	start := time.Now()
	handled, err := task.submit(context.Background(), []int{2})
	require.True(t, handled)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 8*time.Millisecond)
	require.Equal(t, 1, task.depth(), `notification 2 should have been dropped`)
}

func TestNotificationTask_submitCanceledContext(t *testing.T) {
	d, err := New(Config[*testListener, int]{
		Executor:         NewBoundedExecutor(1),
		Invoker:          func(*testListener, int) error { return nil },
		MaxQueueCapacity: 1,
		Logger:           DefaultLogger(),
	})
	require.NoError(t, err)

	listener := &testListener{id: 1}
	key, ok := newListenerKey(listener)
	require.True(t, ok)
	task := newNotificationTask(d, key, listener, []int{1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handled, err := task.submit(ctx, []int{2})
	require.True(t, handled)
	require.Error(t, err)
}

func TestNotificationTask_runRetiresWhenQueueStaysEmpty(t *testing.T) {
	d, err := New(Config[*testListener, int]{
		Executor:         NewBoundedExecutor(1),
		Invoker:          func(*testListener, int) error { return nil },
		MaxQueueCapacity: 1,
		Logger:           DefaultLogger(),
		PollInterval:     5 * time.Millisecond,
	})
	require.NoError(t, err)

	listener := &testListener{id: 1}
	key, ok := newListenerKey(listener)
	require.True(t, ok)
	task := newNotificationTask(d, key, listener, nil)
	d.registry.insertIfAbsent(key, task)

	done := make(chan struct{})
	go func() {
		task.run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal(`run never retired an idle task`)
	}

	_, found := d.registry.get(key)
	require.False(t, found, `retired task should have removed itself from the registry`)
}

func TestNotificationTask_runCanceledContextStops(t *testing.T) {
	d, err := New(Config[*testListener, int]{
		Executor:         NewBoundedExecutor(1),
		Invoker:          func(*testListener, int) error { return nil },
		MaxQueueCapacity: 1,
		Logger:           DefaultLogger(),
		PollInterval:     time.Second,
	})
	require.NoError(t, err)

	listener := &testListener{id: 1}
	key, ok := newListenerKey(listener)
	require.True(t, ok)
	task := newNotificationTask(d, key, listener, nil)
	d.registry.insertIfAbsent(key, task)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		task.run(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal(`run never stopped after context cancellation`)
	}
}
