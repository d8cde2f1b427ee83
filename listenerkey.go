package notifymanager

import (
	"fmt"
	"reflect"
)

// listenerKey is used as the registry map key. It keys by the listener's
// reference identity, never by whatever equality the listener's own type
// happens to define.
//
// Go has no operator overloading, so for pointer or channel listener
// values, built-in "==" is already reference identity, and would suffice as
// a map key on its own; map and func values are not comparable at all, so
// they need a key derived from them. listenerKey also exists so that
// listeners of interface type wrapping one of those kinds get the same
// treatment (an interface value's dynamic pointer, not its static type),
// and so a listener of a non-reference kind (a plain struct or primitive
// passed by value) is rejected up front rather than silently colliding with
// an unrelated, field-wise-equal value: for those kinds there is no notion
// of reference identity in Go to fall back on.
type listenerKey struct {
	typ reflect.Type
	ptr uintptr
}

// newListenerKey derives a listenerKey for listener, or ok=false if
// listener has no reference identity Go can observe (a non-pointer-like
// kind, or a nil pointer-like value).
func newListenerKey(listener any) (key listenerKey, ok bool) {
	if listener == nil {
		return listenerKey{}, false
	}

	v := reflect.ValueOf(listener)
	switch v.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Func, reflect.Map, reflect.UnsafePointer:
		if v.IsNil() {
			return listenerKey{}, false
		}
		return listenerKey{typ: v.Type(), ptr: v.Pointer()}, true
	default:
		return listenerKey{}, false
	}
}

// listenerString renders listener using fmt's default verb, matching
// the Java original's ListenerKey.toString (which just returns
// listener.toString()), used for logging and QueueStats.
func listenerString(listener any) string {
	return fmt.Sprintf(`%v`, listener)
}
