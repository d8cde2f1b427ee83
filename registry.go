package notifymanager

import "sync"

// registry maps a listenerKey to the currently-live notificationTask for
// that listener. It supports atomic insert-if-absent (sync.Map.LoadOrStore
// is exactly this primitive) and unconditional removal: at most one task
// is ever registered for a given listener at a time.
type registry[L, N any] struct {
	m sync.Map // listenerKey -> *notificationTask[L, N]
}

func (r *registry[L, N]) get(key listenerKey) (*notificationTask[L, N], bool) {
	v, ok := r.m.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*notificationTask[L, N]), true
}

// insertIfAbsent stores candidate under key iff no task is currently
// registered for it, returning the task that ended up registered (either
// candidate, or a pre-existing one) and whether candidate won.
func (r *registry[L, N]) insertIfAbsent(key listenerKey, candidate *notificationTask[L, N]) (actual *notificationTask[L, N], inserted bool) {
	v, loaded := r.m.LoadOrStore(key, candidate)
	if !loaded {
		return candidate, true
	}
	return v.(*notificationTask[L, N]), false
}

func (r *registry[L, N]) remove(key listenerKey) {
	r.m.Delete(key)
}

// snapshot returns a weakly-consistent view of every currently-registered
// task, for QueueStats. It may reflect concurrent insertions/removals that
// happen during the call.
func (r *registry[L, N]) snapshot() []*notificationTask[L, N] {
	var tasks []*notificationTask[L, N]
	r.m.Range(func(_, v any) bool {
		tasks = append(tasks, v.(*notificationTask[L, N]))
		return true
	})
	return tasks
}
