// Package kernel models the kernel objects the HLE service layer hands out
// through translate parameters: events, mutexes, shared memory, and the
// per-process handle tables that own references to them. The marshaling core
// never looks inside these; it moves opaque handle words.
package kernel

// Handle is a process-local reference to a kernel object. Zero is never a
// valid handle.
type Handle uint32

// Object is anything a handle can refer to.
type Object interface {
	// Name identifies the object in logs.
	Name() string
}
