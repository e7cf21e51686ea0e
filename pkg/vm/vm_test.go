package vm_test

import (
	"bytes"
	"errors"
	"minivm/pkg/codegen"
	"minivm/pkg/parser"
	"minivm/pkg/semantic"
	"minivm/pkg/vm"
	"strings"
	"testing"
)

func compile(t *testing.T, src string) *codegen.Sequence {
	t.Helper()

	tree, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if err := semantic.Check(tree); err != nil {
		t.Fatalf("unexpected semantic error: %v", err)
	}
	seq, err := codegen.Generate(tree)
	if err != nil {
		t.Fatalf("unexpected codegen error: %v", err)
	}
	if err := codegen.Link(seq); err != nil {
		t.Fatalf("unexpected link error: %v", err)
	}
	return seq
}

func linked(instrs ...codegen.Instruction) *codegen.Sequence {
	return &codegen.Sequence{Instructions: instrs, Linked: true}
}

func expectVar(t *testing.T, m *vm.VM, name string, want int64) {
	t.Helper()

	got, ok := m.Lookup(name)
	if !ok {
		t.Errorf("expected %s to be bound", name)
		return
	}
	if got != want {
		t.Errorf("expected %s = %d, got %d", name, want, got)
	}
}

func TestRunStraightLine(t *testing.T) {
	m := vm.New(compile(t, "var x = 1; var y = 2; x = x + y;"))

	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectVar(t, m, "x", 3)
	expectVar(t, m, "y", 2)

	if m.State() != vm.Terminated {
		t.Errorf("expected TERMINATED, got %s", m.State())
	}
}

func TestRunPrograms(t *testing.T) {
	tests := []struct {
		src  string
		name string
		want int64
	}{
		{"var a = 5; if (a > 3) { a = 1; } else { a = 0; }", "a", 1},
		{"var a = 2; if (a > 3) { a = 1; } else { a = 0; }", "a", 0},
		{"var a = 2; if (a == 2) { a = 7; }", "a", 7},
		{"var i = 0; var s = 0; while (i < 5) { s = s + i; i = i + 1; }", "s", 10},
		{"var f = 1; for (var i = 1; i <= 5; i = i + 1) { f = f * i; }", "f", 120},
		{"var x = 10 - 2 - 3;", "x", 5},
		{"var x = 2 + 3 * 4;", "x", 14},
		{"var x = (2 + 3) * 4;", "x", 20},
		{"var x = 7 / 2;", "x", 3},
		{"var x = -7 / 2;", "x", -3},
		{"var x = -(3 + 4);", "x", -7},
		{"var x = 3 != 3;", "x", 0},
		{"var x = 3 >= 3;", "x", 1},
		{"var x;", "x", 0},
		{"var x = 1; { var y = 4; x = y; }", "x", 4},
	}

	for _, test := range tests {
		m := vm.New(compile(t, test.src))
		if err := m.Run(); err != nil {
			t.Errorf("%q: unexpected error %v", test.src, err)
			continue
		}
		got, _ := m.Lookup(test.name)
		if got != test.want {
			t.Errorf("%q: expected %s = %d, got %d", test.src, test.name, test.want, got)
		}
	}
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	m := vm.New(compile(t, "var z = 1;\nz = z / 0;"))

	err := m.Run()

	var rt *vm.RuntimeError
	if !errors.As(err, &rt) {
		t.Fatalf("expected *vm.RuntimeError, got %v", err)
	}
	if !errors.Is(err, vm.ErrDivisionByZero) || !vm.IsFatal(err) {
		t.Errorf("expected fatal division by zero, got %v", err)
	}
	if rt.Op != codegen.OpDiv || rt.Line != 2 {
		t.Errorf("expected DIV on line 2, got %s on line %d", rt.Op, rt.Line)
	}
	if m.State() != vm.Terminated {
		t.Errorf("expected TERMINATED, got %s", m.State())
	}
	// the store is untouched by the failed statement
	expectVar(t, m, "z", 1)
}

func TestBreakpointStopsBeforeExecution(t *testing.T) {
	src := "var a = 5;\nif (a > 3) {\n  a = 1;\n} else {\n  a = 0;\n}"
	m := vm.New(compile(t, src))

	ip, ok := m.BreakpointAtLine(3)
	if !ok {
		t.Fatalf("expected an instruction on line 3")
	}

	err := m.Run()

	var hit *vm.BreakpointHit
	if !errors.As(err, &hit) || !errors.Is(err, vm.ErrBreakpoint) {
		t.Fatalf("expected breakpoint hit, got %v", err)
	}
	if hit.PC != ip || m.PC() != ip || hit.Line != 3 {
		t.Errorf("expected stop at IR[%d] line 3, got IR[%d] line %d (pc %d)", ip, hit.PC, hit.Line, m.PC())
	}
	if m.State() != vm.Paused {
		t.Errorf("expected PAUSED, got %s", m.State())
	}
	expectVar(t, m, "a", 5)

	// resuming reports the same breakpoint again without executing
	steps := m.Steps()
	if _, err := m.Step(); !errors.Is(err, vm.ErrBreakpoint) {
		t.Errorf("expected breakpoint on resume, got %v", err)
	}
	if err := m.Run(); !errors.Is(err, vm.ErrBreakpoint) {
		t.Errorf("expected breakpoint on continue, got %v", err)
	}
	if m.Steps() != steps || m.PC() != ip {
		t.Errorf("expected no progress past the breakpoint")
	}
}

func TestBreakpointUnknownLine(t *testing.T) {
	m := vm.New(compile(t, "var a = 1;"))

	if _, ok := m.BreakpointAtLine(42); ok {
		t.Errorf("expected no instruction for line 42")
	}
	if _, ok := m.BreakpointAtLine(0); ok {
		t.Errorf("expected line 0 to be rejected")
	}
	if len(m.Breakpoints()) != 0 {
		t.Errorf("expected no breakpoints, got %v", m.Breakpoints())
	}
	if err := m.SetBreakpoint(99); err == nil {
		t.Errorf("expected out of range error")
	}
}

func TestInfiniteLoopHitsStepBound(t *testing.T) {
	m := vm.New(compile(t, "var i = 0; while (1) { i = i + 1; }"), vm.WithMaxSteps(100))

	err := m.Run()
	if !errors.Is(err, vm.ErrMaxStepsExceeded) {
		t.Fatalf("expected ErrMaxStepsExceeded, got %v", err)
	}
	if vm.IsFatal(err) {
		t.Errorf("expected step bound to be recoverable")
	}
	if m.Steps() != 100 {
		t.Errorf("expected exactly 100 steps, got %d", m.Steps())
	}
	if m.State() != vm.Paused {
		t.Errorf("expected PAUSED, got %s", m.State())
	}
	if _, ok := m.Lookup("i"); !ok {
		t.Errorf("expected state to stay inspectable")
	}
}

func TestDefaultStepBound(t *testing.T) {
	m := vm.New(compile(t, "var i = 0; while (1 > 0) { i = i + 1; }"))

	if err := m.Run(); !errors.Is(err, vm.ErrMaxStepsExceeded) {
		t.Fatalf("expected ErrMaxStepsExceeded, got %v", err)
	}
	if m.Steps() != vm.DefaultMaxSteps {
		t.Errorf("expected %d steps, got %d", vm.DefaultMaxSteps, m.Steps())
	}
}

func TestStepOnDoneVM(t *testing.T) {
	m := vm.New(compile(t, "var a = 1;"))

	for i := 0; i < 2; i++ {
		if halted, err := m.Step(); halted || err != nil {
			t.Fatalf("step %d: unexpected halted=%v err=%v", i, halted, err)
		}
	}
	if !m.Done() {
		t.Fatalf("expected VM to be done at HALT")
	}

	steps := m.Steps()
	for i := 0; i < 3; i++ {
		halted, err := m.Step()
		if !halted || err != nil {
			t.Errorf("expected halted without error, got %v %v", halted, err)
		}
	}
	if m.Steps() != steps {
		t.Errorf("expected no extra steps counted, got %d", m.Steps()-steps)
	}
}

func TestLoadUnknownVariable(t *testing.T) {
	m := vm.New(linked(
		codegen.LoadVar("q", 1),
		codegen.StoreVar("r", 1),
		codegen.Halt(0),
	))

	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectVar(t, m, "r", 0)
	if _, ok := m.Lookup("q"); ok {
		t.Errorf("expected q to stay unbound")
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name string
		seq  *codegen.Sequence
		opts []vm.Option
		err  error
	}{
		{
			name: "underflow",
			seq:  linked(codegen.Simple(codegen.OpAdd, 1), codegen.Halt(0)),
			err:  vm.ErrStackUnderflow,
		},
		{
			name: "overflow",
			seq:  linked(codegen.LoadConst(1, 1), codegen.LoadConst(2, 1), codegen.LoadConst(3, 1), codegen.Halt(0)),
			opts: []vm.Option{vm.WithStackSize(2)},
			err:  vm.ErrStackOverflow,
		},
		{
			name: "unknown opcode",
			seq:  linked(codegen.Instruction{Op: "PUSH", Line: 1}),
			err:  vm.ErrUnknownOpcode,
		},
		{
			name: "bad jump",
			seq:  linked(codegen.Jump(-4, 1), codegen.Halt(0)),
			err:  vm.ErrBadJump,
		},
	}

	for _, test := range tests {
		m := vm.New(test.seq, test.opts...)
		err := m.Run()
		if !errors.Is(err, test.err) || !vm.IsFatal(err) {
			t.Errorf("%s: expected fatal %v, got %v", test.name, test.err, err)
		}
	}
}

func TestUnlinkedSequence(t *testing.T) {
	seq := &codegen.Sequence{Instructions: []codegen.Instruction{codegen.Halt(0)}}

	if _, err := vm.New(seq).Step(); !errors.Is(err, vm.ErrNotLinked) {
		t.Errorf("expected ErrNotLinked, got %v", err)
	}
}

func TestInstancesAreIsolated(t *testing.T) {
	seq := compile(t, "var x = 1; x = x + 41;")
	a := vm.New(seq)
	b := vm.New(seq)

	if err := a.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectVar(t, a, "x", 42)

	if _, ok := b.Lookup("x"); ok || b.PC() != 0 || b.HeapSize() != 0 {
		t.Errorf("expected second VM untouched")
	}
}

func TestResetClearsEverything(t *testing.T) {
	m := vm.New(compile(t, "var x = 1;\nx = 2;"))
	m.BreakpointAtLine(2)

	if err := m.Run(); !errors.Is(err, vm.ErrBreakpoint) {
		t.Fatalf("expected breakpoint, got %v", err)
	}

	m.Reset()

	if m.PC() != 0 || m.Steps() != 0 || m.HeapSize() != 0 || len(m.Stack()) != 0 {
		t.Errorf("expected clean VM after reset")
	}
	if len(m.Breakpoints()) != 0 || len(m.Names()) != 0 {
		t.Errorf("expected breakpoints and store cleared")
	}
	if m.State() != vm.Ready {
		t.Errorf("expected READY, got %s", m.State())
	}
	if err := m.Run(); err != nil {
		t.Fatalf("unexpected error after reset: %v", err)
	}
	expectVar(t, m, "x", 2)
}

func TestDump(t *testing.T) {
	m := vm.New(compile(t, "var y = 2; var x = 3;"))
	if err := m.Run(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	m.Dump(&buf)

	want := "--- VM Final State ---\nx = 3\ny = 2\n----------------------\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestPrintState(t *testing.T) {
	m := vm.New(compile(t, "var x = 1 + 2;"))
	for i := 0; i < 2; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	m.PrintState(&buf)

	want := "PC = 2\nStack:\n  [0] 1\n  [1] 2\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestStackValuesMatchPrintedState(t *testing.T) {
	m := vm.New(compile(t, "var x = 4 * 5;"))
	for i := 0; i < 3; i++ {
		if _, err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if s := m.Stack(); len(s) != 1 || s[0] != 20 {
		t.Errorf("expected stack [20], got %v", s)
	}
	if !strings.Contains(m.Sequence().String(), "MUL") {
		t.Errorf("expected MUL in the program")
	}
}
