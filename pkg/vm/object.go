package vm

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/charmbracelet/log"
)

// Object is a boxed integer living on the VM heap.
type Object struct {
	Value  int64
	Marked bool
}

// ObjectSize is the accounted size of one heap object in bytes
const ObjectSize = int(unsafe.Sizeof(Object{}))

type GCStats struct {
	Before int
	After  int
	Freed  int
}

type LeakReport struct {
	Objects int
	Bytes   int
}

// WriteTo prints the report in the leak report format
func (r LeakReport) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "--- Leak Report ---\nLeaked objects: %d\nLeaked bytes:   %d\n-------------------\n", r.Objects, r.Bytes)
	return int64(n), err
}

// alloc boxes a value onto the heap. Allocation never triggers a collection.
func (m *VM) alloc(v int64) *Object {
	o := &Object{Value: v}
	m.heap = append(m.heap, o)
	return o
}

// Collect marks every object reachable from the live stack and the variable
// store, then sweeps the rest. Survivors are unmarked again.
func (m *VM) Collect() GCStats {
	before := len(m.heap)

	for _, o := range m.stack {
		mark(o)
	}
	for _, o := range m.store {
		mark(o)
	}

	live := m.heap[:0]
	for _, o := range m.heap {
		if o.Marked {
			o.Marked = false
			live = append(live, o)
		}
	}
	// drop references held by the tail so swept objects can be reclaimed
	clear(m.heap[len(live):])
	m.heap = live

	stats := GCStats{Before: before, After: len(m.heap), Freed: before - len(m.heap)}
	log.Debug("Garbage collection", "before", stats.Before, "after", stats.After, "freed", stats.Freed)
	return stats
}

func mark(o *Object) {
	if o == nil || o.Marked {
		return
	}
	o.Marked = true
}

// ReportLeaks counts the objects still on the heap
func (m *VM) ReportLeaks() LeakReport {
	return LeakReport{Objects: len(m.heap), Bytes: len(m.heap) * ObjectSize}
}

// HeapSize returns the number of objects on the heap
func (m *VM) HeapSize() int {
	return len(m.heap)
}

// Destroy frees the whole heap. The stack and store are emptied with it
// since they only ever point into the heap.
func (m *VM) Destroy() {
	clear(m.heap)
	m.heap = nil
	clear(m.stack)
	m.stack = m.stack[:0]
	clear(m.store)
}
