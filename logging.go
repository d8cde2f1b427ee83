package notifymanager

import (
	"io"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// DefaultLogger returns a logiface.Logger with logging disabled. It is
// nil-safe to chain against (Builder methods on a disabled logger are
// no-ops), so it costs nothing when a caller doesn't configure Config.Logger.
func DefaultLogger() *logiface.Logger[logiface.Event] {
	return logiface.L.New(logiface.L.WithLevel(logiface.LevelDisabled)).Logger()
}

// NewJSONLogger returns a logiface.Logger backed by
// github.com/joeycumines/stumpy, stumpy's zero-allocation JSON writer,
// logging at level and above, writing to w. This is the default backend
// recommended by the logiface ecosystem (see also logiface-slog,
// logiface-zerolog, logiface-logrus for alternatives); it is offered here
// purely as a convenience, not a requirement — any logiface backend works.
func NewJSONLogger(level logiface.Level, w io.Writer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithLevel(level),
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
	).Logger()
}
