package notifymanager

import "errors"

var (
	// ErrBadArgument is returned by New when the supplied Config is invalid,
	// e.g. a non-positive MaxQueueCapacity, or a nil Executor or Invoker.
	ErrBadArgument = errors.New(`notifymanager: bad argument`)

	// ErrRejected is returned by Submit/SubmitAll when a freshly created
	// task could not be handed off because the Executor refused it (e.g. it
	// is saturated or shutting down). It is the only error either method can
	// return to a caller; all other failure modes are contained internally.
	ErrRejected = errors.New(`notifymanager: executor rejected task`)
)
