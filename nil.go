package notifymanager

import "reflect"

// isNilNotification reports whether n is a nil value of a kind Go allows to
// be nil. Notification is an opaque type parameter, so this is the only
// generic way to detect and silently drop a nil notification without
// requiring N to satisfy some comparable-to-nil constraint.
func isNilNotification(n any) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}
