package kernel

// Event is the one-shot notification primitive. Signal latches it; a waiter
// observes and clears it. Under the cooperative call model there is no real
// blocking, so waiting collapses to checking the latched state.
type Event struct {
	name     string
	signaled bool
}

func NewEvent(name string) *Event {
	return &Event{name: name}
}

func (e *Event) Name() string { return e.name }

// Signal latches the event. Repeated signals before a clear coalesce.
func (e *Event) Signal() {
	e.signaled = true
}

func (e *Event) Clear() {
	e.signaled = false
}

func (e *Event) Signaled() bool {
	return e.signaled
}

// Mutex serializes a shared resource across logically distinct emulated
// processes. Ownership is tracked by handle-holding convention, not by a host
// OS lock; calls are already strictly sequential.
type Mutex struct {
	name   string
	locked bool
}

func NewMutex(name string, locked bool) *Mutex {
	return &Mutex{name: name, locked: locked}
}

func (m *Mutex) Name() string { return m.name }

// Lock acquires the mutex, reporting false if it was already held.
func (m *Mutex) Lock() bool {
	if m.locked {
		return false
	}
	m.locked = true
	return true
}

func (m *Mutex) Release() {
	m.locked = false
}

func (m *Mutex) Locked() bool {
	return m.locked
}
