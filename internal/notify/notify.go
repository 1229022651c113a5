// Package notify is a small synchronous callback registry keyed by event
// type. Handlers run on the emitting goroutine in registration order.
package notify

import "slices"

type handler[E any] struct {
	id uint32
	fn func(E)
}

// Registry holds handlers for events of type E keyed by K. The zero value
// is ready to use. It is not safe for concurrent use.
type Registry[K comparable, E any] struct {
	nextID   uint32
	handlers map[K][]handler[E]
}

// Handle removes a registered callback.
type Handle struct {
	remove func()
}

// Remove unregisters the callback so it no longer fires. Calling it again,
// or on the zero Handle, does nothing.
func (h Handle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

// On registers fn for events keyed k.
func (r *Registry[K, E]) On(k K, fn func(E)) Handle {
	if r.handlers == nil {
		r.handlers = make(map[K][]handler[E])
	}
	r.nextID++
	id := r.nextID
	r.handlers[k] = append(r.handlers[k], handler[E]{id: id, fn: fn})
	return Handle{remove: func() {
		r.handlers[k] = slices.DeleteFunc(r.handlers[k], func(h handler[E]) bool { return h.id == id })
	}}
}

// Emit calls every handler registered for k. Handlers may register or
// remove callbacks while being called; changes apply from the next Emit.
func (r *Registry[K, E]) Emit(k K, e E) {
	for _, h := range slices.Clone(r.handlers[k]) {
		h.fn(e)
	}
}

// Len returns the number of handlers registered for k.
func (r *Registry[K, E]) Len(k K) int { return len(r.handlers[k]) }
