package vm_test

import (
	"bytes"
	"minivm/pkg/vm"
	"testing"
)

func TestCollectKeepsStackRoots(t *testing.T) {
	m := vm.New(compile(t, "var x = 1 + 2;"))

	// LOAD_CONST 1, LOAD_CONST 2
	for i := 0; i < 2; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	stats := m.Collect()
	if stats.Before != 2 || stats.After != 2 || stats.Freed != 0 {
		t.Errorf("expected both operands kept, got %+v", stats)
	}

	// ADD leaves only the result reachable
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	stats = m.Collect()
	if stats.Before != 3 || stats.After != 1 || stats.Freed != 2 {
		t.Errorf("expected operands freed, got %+v", stats)
	}
	if s := m.Stack(); len(s) != 1 || s[0] != 3 {
		t.Errorf("expected stack [3] after collection, got %v", s)
	}
}

func TestCollectKeepsStoreRoots(t *testing.T) {
	m := vm.New(compile(t, "var x = 1; var y = 2; x = x + y;"))
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	// Run already collected: only the objects bound to x and y survive
	if m.HeapSize() != 2 {
		t.Errorf("expected 2 live objects, got %d", m.HeapSize())
	}
	expectVar(t, m, "x", 3)
	expectVar(t, m, "y", 2)

	report := m.ReportLeaks()
	if report.Objects != 2 || report.Bytes != 2*vm.ObjectSize {
		t.Errorf("expected 2 objects and %d bytes, got %+v", 2*vm.ObjectSize, report)
	}
}

func TestCollectWithoutRootsEmptiesHeap(t *testing.T) {
	m := vm.New(compile(t, "if (1 < 2) { } while (0) { }"))
	for {
		halted, err := m.Step()
		if err != nil {
			t.Fatal(err)
		}
		if halted {
			break
		}
	}
	if len(m.Stack()) != 0 || len(m.Names()) != 0 {
		t.Fatalf("expected no roots, got stack %v names %v", m.Stack(), m.Names())
	}
	if m.HeapSize() == 0 {
		t.Fatalf("expected garbage on the heap before collecting")
	}

	stats := m.Collect()
	if stats.After != 0 || m.HeapSize() != 0 {
		t.Errorf("expected empty heap, got %+v (heap %d)", stats, m.HeapSize())
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	m := vm.New(compile(t, "var i = 0; while (i < 10) { i = i + 1; }"))
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	first := m.HeapSize()
	stats := m.Collect()
	if stats.Freed != 0 || stats.After != first {
		t.Errorf("expected second collection to free nothing, got %+v", stats)
	}
	if m.Collect().Freed != 0 {
		t.Errorf("expected marks to be cleared between collections")
	}
}

func TestCollectMidLoop(t *testing.T) {
	m := vm.New(compile(t, "var i = 0; while (i < 1000) { i = i + 1; }"), vm.WithMaxSteps(200))

	if err := m.Run(); err == nil {
		t.Fatalf("expected step bound")
	}
	before := m.HeapSize()
	stats := m.Collect()

	if stats.Freed == 0 || stats.After >= before {
		t.Errorf("expected garbage from the loop, got %+v", stats)
	}
	// i and any stack operands must survive
	if stats.After > 1+len(m.Stack()) {
		t.Errorf("expected at most %d live objects, got %d", 1+len(m.Stack()), stats.After)
	}
	if _, ok := m.Lookup("i"); !ok {
		t.Errorf("expected i to survive collection")
	}
}

func TestReportLeaksDoesNotMutate(t *testing.T) {
	m := vm.New(compile(t, "var x = 1 + 2;"))
	for i := 0; i < 3; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}

	a := m.ReportLeaks()
	b := m.ReportLeaks()
	if a != b || a.Objects != 3 {
		t.Errorf("expected stable report of 3 objects, got %+v %+v", a, b)
	}
}

func TestLeakReportFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := (vm.LeakReport{Objects: 3, Bytes: 48}).WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	want := "--- Leak Report ---\nLeaked objects: 3\nLeaked bytes:   48\n-------------------\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestDestroy(t *testing.T) {
	m := vm.New(compile(t, "var x = 5;"))
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	m.Destroy()

	if m.HeapSize() != 0 || m.ReportLeaks().Objects != 0 {
		t.Errorf("expected empty heap after destroy")
	}
	if len(m.Names()) != 0 {
		t.Errorf("expected empty store after destroy")
	}
}

func TestDestroyMidRun(t *testing.T) {
	m := vm.New(compile(t, "var x = 1 + 2;"))
	for i := 0; i < 2; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}

	m.Destroy()

	if len(m.Stack()) != 0 || m.HeapSize() != 0 {
		t.Errorf("expected empty stack and heap, got stack %v heap %d", m.Stack(), m.HeapSize())
	}
}
