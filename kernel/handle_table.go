package kernel

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHandle = errors.New("handle does not name a live object")
	ErrTableFull     = errors.New("handle table is full")
)

const maxHandles = 4096

// HandleTable is one process's view of its kernel object references. Handles
// from different tables are unrelated values; transferring an object between
// processes allocates a fresh handle in the destination table.
type HandleTable struct {
	objects map[Handle]Object
	next    Handle
}

func NewHandleTable() *HandleTable {
	return &HandleTable{
		objects: make(map[Handle]Object),
		next:    1,
	}
}

// Create allocates a handle for obj.
func (t *HandleTable) Create(obj Object) (Handle, error) {
	if len(t.objects) >= maxHandles {
		return 0, ErrTableFull
	}
	h := t.next
	t.next++
	t.objects[h] = obj
	return h, nil
}

// Get resolves a handle.
func (t *HandleTable) Get(h Handle) (Object, error) {
	obj, ok := t.objects[h]
	if !ok {
		return nil, fmt.Errorf("handle %#x: %w", h, ErrInvalidHandle)
	}
	return obj, nil
}

// Close drops a reference. The object itself lives as long as anything still
// refers to it.
func (t *HandleTable) Close(h Handle) error {
	if _, ok := t.objects[h]; !ok {
		return fmt.Errorf("handle %#x: %w", h, ErrInvalidHandle)
	}
	delete(t.objects, h)
	return nil
}

// Transfer re-homes the object behind h into dst, returning the handle dst
// knows it by. A copy transfer leaves the source reference intact; a move
// transfer revokes it, so the sender can no longer reach the object.
func (t *HandleTable) Transfer(h Handle, dst *HandleTable, copy bool) (Handle, error) {
	obj, err := t.Get(h)
	if err != nil {
		return 0, err
	}
	nh, err := dst.Create(obj)
	if err != nil {
		return 0, err
	}
	if !copy {
		delete(t.objects, h)
	}
	return nh, nil
}

// Len reports the number of live handles.
func (t *HandleTable) Len() int {
	return len(t.objects)
}
