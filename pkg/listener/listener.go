// Package listener provides one-to-many change notification between
// settings. Notification is synchronous and unbatched.
package listener

import "reflect"

// Speaker is the component whose value changed.
type Speaker interface {
	Name() string
	Value() string
}

// Listener is informed when a speaker it registered with changes.
type Listener interface {
	Update(speaker Speaker)
}

// Func adapts a function to the Listener interface.
type Func func(speaker Speaker)

// Update calls f(speaker).
func (f Func) Update(speaker Speaker) {
	f(speaker)
}

// Manager holds the dependents of one speaker.
type Manager struct {
	listeners []Listener
}

// Register adds l unless it is already registered.
func (m *Manager) Register(l Listener) {
	for _, existing := range m.listeners {
		if sameListener(existing, l) {
			return
		}
	}
	m.listeners = append(m.listeners, l)
}

// Inform calls every listener in registration order.
func (m *Manager) Inform(speaker Speaker) {
	for _, l := range m.listeners {
		l.Update(speaker)
	}
}

// Len returns the number of registered listeners.
func (m *Manager) Len() int {
	return len(m.listeners)
}

// sameListener compares listeners by identity. Values of non-comparable
// types (Func included) are always treated as distinct.
func sameListener(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
