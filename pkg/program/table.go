package program

import (
	"errors"
	"fmt"
	"maps"
	"minivm/pkg/vm"
	"os"
	"slices"
)

var ErrNoSuchProgram = errors.New("no such program")

// Table holds submitted programs by pid. PIDs start at 1 and are never reused.
type Table struct {
	programs map[int]*Program
	nextPID  int
	vmOpts   []vm.Option
}

// NewTable creates an empty table; opts configure every VM it creates
func NewTable(opts ...vm.Option) *Table {
	return &Table{
		programs: make(map[int]*Program),
		nextPID:  1,
		vmOpts:   opts,
	}
}

// Submit reads a source file and registers it as a new program
func (t *Table) Submit(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return t.SubmitSource(path, string(data)), nil
}

// SubmitSource registers source text under a display path
func (t *Table) SubmitSource(path, source string) *Program {
	p := New(t.nextPID, path, source, t.vmOpts...)
	t.programs[p.PID] = p
	t.nextPID++
	return p
}

func (t *Table) Lookup(pid int) (*Program, error) {
	p, ok := t.programs[pid]
	if !ok {
		return nil, fmt.Errorf("%w with PID %d", ErrNoSuchProgram, pid)
	}
	return p, nil
}

// List returns the programs ordered by pid
func (t *Table) List() []*Program {
	out := make([]*Program, 0, len(t.programs))
	for _, pid := range slices.Sorted(maps.Keys(t.programs)) {
		out = append(out, t.programs[pid])
	}
	return out
}

// Kill destroys a program and removes it from the table
func (t *Table) Kill(pid int) error {
	p, err := t.Lookup(pid)
	if err != nil {
		return err
	}
	p.Destroy()
	delete(t.programs, pid)
	return nil
}

func (t *Table) Len() int {
	return len(t.programs)
}
