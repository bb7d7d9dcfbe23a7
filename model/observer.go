package model

import "sync"

// Observer is notified when an observed property changes on an instance.
type Observer interface {
	PropertyChanged(inst Instance, prop *Property)
}

// ObserverRegistry is the per-property set of observers. Registrations are
// counted: an observer added twice must be removed twice. It is safe for
// concurrent use.
type ObserverRegistry struct {
	mu        sync.Mutex
	observers []Observer
}

// Add registers o.
func (r *ObserverRegistry) Add(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = append(r.observers, o)
}

// Remove deregisters one registration of o and reports whether one existed.
func (r *ObserverRegistry) Remove(o Observer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.observers) - 1; i >= 0; i-- {
		if r.observers[i] == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return true
		}
	}

	return false
}

// Count returns the number of registrations.
func (r *ObserverRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.observers)
}

// Contains reports whether o holds at least one registration.
func (r *ObserverRegistry) Contains(o Observer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.observers {
		if existing == o {
			return true
		}
	}

	return false
}

// Notify calls every registered observer. Observers may add or remove
// registrations while being notified.
func (r *ObserverRegistry) Notify(inst Instance, prop *Property) {
	r.mu.Lock()
	snapshot := append([]Observer(nil), r.observers...)
	r.mu.Unlock()

	for _, o := range snapshot {
		o.PropertyChanged(inst, prop)
	}
}
