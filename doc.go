// Package notifymanager queues and dispatches notifications for multiple
// listeners concurrently. Notifications are queued on a per-listener basis
// and dispatched serially to each listener via a caller-supplied Executor.
//
// The package optimizes memory footprint by only allocating a queue and
// worker task for a listener while it has pending notifications. On the
// first notification(s) for a listener, a queue is created and a task is
// submitted to the Executor to drain it. Any subsequent notifications
// submitted before the task has finished draining are appended to the
// existing queue. Once all notifications have been dispatched, the queue
// and task are discarded.
//
// A single listener never observes two of its own notifications
// concurrently, and notifications submitted for the same listener by the
// same goroutine are delivered in submission order. See also
// [github.com/joeycumines/go-microbatch] and
// [github.com/joeycumines/go-longpoll], for related but distinct
// batching/receiving primitives.
package notifymanager
