// Package access composes independent readonly reasons into one flag.
package access

// Reason keys used by the console.
const (
	ReasonInherit    = "inherit"
	ReasonService    = "service"
	ReasonGlobalLock = "global_lock"
)

// Manager records the latest readonly state of every reason ever set. A
// setting is readonly while any reason is true.
type Manager struct {
	reasons map[string]bool
	order   []string
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{reasons: make(map[string]bool)}
}

// Set records readonly for reason. Setting false keeps the reason and flips
// its flag.
func (m *Manager) Set(readonly bool, reason string) {
	if _, ok := m.reasons[reason]; !ok {
		m.order = append(m.order, reason)
	}
	m.reasons[reason] = readonly
}

// Readonly reports whether at least one reason is currently true.
func (m *Manager) Readonly() bool {
	for _, ro := range m.reasons {
		if ro {
			return true
		}
	}
	return false
}

// Reasons returns the active reasons in the order they were first set.
func (m *Manager) Reasons() []string {
	var active []string
	for _, r := range m.order {
		if m.reasons[r] {
			active = append(active, r)
		}
	}
	return active
}
