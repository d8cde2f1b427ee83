package notifymanager

// Invoker performs the actual delivery of a notification to a listener. It
// is supplied by the caller and treated as an external collaborator,
// exactly like Executor.
//
// A returned error that is (or wraps, per errors.As) a *FatalError is
// treated as unrecoverable: the owning task retires immediately and the
// error is re-raised as a panic from the goroutine the Executor is running
// it in, so the Executor's own failure policy applies. Any other error is
// logged at Err level and delivery continues with the next notification.
type Invoker[L, N any] func(listener L, notification N) error

// FatalError marks an error returned by an Invoker as unrecoverable. Wrap
// an error in FatalError when the failure indicates the process itself is
// in a non-resumable state (e.g. corrupted shared state), not merely that
// one notification could not be handled.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return `notifymanager: fatal invoker error`
	}
	return `notifymanager: fatal invoker error: ` + e.Err.Error()
}

func (e *FatalError) Unwrap() error { return e.Err }
